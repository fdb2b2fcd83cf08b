package center

import (
	"context"
	"errors"
	"fmt"

	"admitdesk/internal/models"
	"admitdesk/internal/repositories"
	"admitdesk/internal/services/ledger"
	"admitdesk/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrForbidden      = errors.New("operation not permitted for this role")
	ErrInvalidCenter  = errors.New("invalid center")
	ErrCenterNotFound = errors.New("center not found")
	ErrDuplicateCode  = errors.New("center code already in use")
)

// RegisterInput carries a superadmin center registration. AdminPassword
// creates the center's admin login; OpeningBalance, when positive, seeds the
// wallet through the ledger.
type RegisterInput struct {
	Code           string
	Name           string
	University     string
	Email          string
	Contact        string
	AdminName      string
	AdminPassword  string
	OpeningBalance float64
	SubCenterAccess bool
}

// Service is the center registry.
type Service interface {
	Register(ctx context.Context, caller *models.UserClaims, in RegisterInput) (*models.Center, error)
	GetByCode(ctx context.Context, code string) (*models.Center, error)
	GetByID(ctx context.Context, id uint) (*models.Center, error)
	ListSummaries(ctx context.Context, caller *models.UserClaims) ([]models.CenterSummary, error)
	UpdateFlags(ctx context.Context, caller *models.UserClaims, id uint, status, subCenterAccess bool) (*models.Center, error)
}

type service struct {
	repo     repositories.CenterRepository
	userRepo repositories.UserRepository
	ledger   ledger.Service
}

func NewService(repo repositories.CenterRepository, userRepo repositories.UserRepository, ledgerSvc ledger.Service) Service {
	if repo == nil {
		panic("center repository is required")
	}
	return &service{
		repo:     repo,
		userRepo: userRepo,
		ledger:   ledgerSvc,
	}
}

func (s *service) Register(ctx context.Context, caller *models.UserClaims, in RegisterInput) (*models.Center, error) {
	if !caller.Role.Can(models.CapManageCenters) {
		return nil, ErrForbidden
	}

	center := &models.Center{
		Code:            in.Code,
		Name:            in.Name,
		University:      in.University,
		Email:           in.Email,
		Contact:         in.Contact,
		Status:          true,
		SubCenterAccess: in.SubCenterAccess,
	}

	v := validation.New()
	v.Center(center)
	if in.AdminPassword != "" {
		v.Password("adminPassword", in.AdminPassword)
	}
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCenter, v.Error())
	}

	if err := s.repo.Create(center); err != nil {
		if err == repositories.ErrDuplicateCode {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to register center: %w", err)
	}

	if in.AdminPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		adminName := in.AdminName
		if adminName == "" {
			adminName = center.Name + " Admin"
		}
		admin := &models.User{
			Email:    center.Email,
			Password: string(hashed),
			Name:     adminName,
			Role:     models.RoleAdmin,
			CenterID: &center.ID,
		}
		if err := s.userRepo.Create(admin); err != nil {
			return nil, fmt.Errorf("failed to create center admin: %w", err)
		}
	}

	if in.OpeningBalance > 0 {
		if _, err := s.ledger.SeedBalance(ctx, caller, center.ID, in.OpeningBalance); err != nil {
			return nil, fmt.Errorf("failed to seed opening balance: %w", err)
		}
		center.WalletBalance = in.OpeningBalance
	}

	return center, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*models.Center, error) {
	center, err := s.repo.GetByCode(code)
	if err != nil {
		if err == repositories.ErrCenterNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, err
	}
	return center, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Center, error) {
	center, err := s.repo.GetByID(id)
	if err != nil {
		if err == repositories.ErrCenterNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, err
	}
	return center, nil
}

func (s *service) ListSummaries(ctx context.Context, caller *models.UserClaims) ([]models.CenterSummary, error) {
	if !caller.Role.Can(models.CapManageCenters) {
		return nil, ErrForbidden
	}
	return s.repo.ListSummaries()
}

func (s *service) UpdateFlags(ctx context.Context, caller *models.UserClaims, id uint, status, subCenterAccess bool) (*models.Center, error) {
	if !caller.Role.Can(models.CapManageCenters) {
		return nil, ErrForbidden
	}
	center, err := s.repo.UpdateFlags(id, status, subCenterAccess)
	if err != nil {
		if err == repositories.ErrCenterNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, err
	}
	return center, nil
}
