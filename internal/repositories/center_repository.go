package repositories

import (
	"context"
	"fmt"
	"strings"

	"admitdesk/internal/models"
	"admitdesk/internal/repositories/cache"

	"gorm.io/gorm"
)

// CenterRepository exposes the center registry. Balance mutations live on
// LedgerRepository; this repo never touches wallet_balance.
type CenterRepository interface {
	Create(center *models.Center) error
	GetByID(id uint) (*models.Center, error)
	GetByCode(code string) (*models.Center, error)
	List() ([]models.Center, error)
	ListSummaries() ([]models.CenterSummary, error)
	UpdateFlags(id uint, status, subCenterAccess bool) (*models.Center, error)
}

type centerRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewCenterRepository(db *gorm.DB, cacheService *cache.CacheService) CenterRepository {
	return &centerRepository{db: db, cache: cacheService}
}

func (r *centerRepository) Create(center *models.Center) error {
	if err := r.db.Create(center).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create center: %w", err)
	}
	r.invalidate(center)
	return nil
}

func (r *centerRepository) GetByID(id uint) (*models.Center, error) {
	if r.cache != nil {
		if center, err := r.cache.GetCenter(context.Background(), r.cache.GenerateKey("center", "id", id)); err == nil {
			return center, nil
		}
	}

	var center models.Center
	if err := r.db.First(&center, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to get center: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.CacheCenter(context.Background(), &center)
	}
	return &center, nil
}

func (r *centerRepository) GetByCode(code string) (*models.Center, error) {
	if r.cache != nil {
		if center, err := r.cache.GetCenter(context.Background(), r.cache.GenerateKey("center", "code", code)); err == nil {
			return center, nil
		}
	}

	var center models.Center
	if err := r.db.Where("code = ?", code).First(&center).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to get center by code: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.CacheCenter(context.Background(), &center)
	}
	return &center, nil
}

func (r *centerRepository) List() ([]models.Center, error) {
	var centers []models.Center
	if err := r.db.Order("code ASC").Find(&centers).Error; err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	return centers, nil
}

func (r *centerRepository) ListSummaries() ([]models.CenterSummary, error) {
	if r.cache != nil {
		if list, err := r.cache.GetCenterList(context.Background()); err == nil {
			return list, nil
		}
	}

	var list []models.CenterSummary
	err := r.db.Model(&models.Center{}).
		Select("code, name, university, wallet_balance").
		Order("code ASC").
		Scan(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list center summaries: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.CacheCenterList(context.Background(), list)
	}
	return list, nil
}

func (r *centerRepository) UpdateFlags(id uint, status, subCenterAccess bool) (*models.Center, error) {
	result := r.db.Model(&models.Center{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"sub_center_access": subCenterAccess,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update center flags: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCenterNotFound
	}

	var center models.Center
	if err := r.db.First(&center, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload center: %w", err)
	}
	r.invalidate(&center)
	return &center, nil
}

func (r *centerRepository) invalidate(center *models.Center) {
	if r.cache != nil {
		_ = r.cache.InvalidateCenter(context.Background(), center.ID, center.Code)
	}
}
