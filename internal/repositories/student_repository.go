package repositories

import (
	"fmt"

	"admitdesk/internal/models"

	"gorm.io/gorm"
)

// StudentRepository manages student applications.
type StudentRepository interface {
	Create(student *models.Student) error
	GetByID(id uint) (*models.Student, error)
	ListByCenter(centerID uint) ([]models.Student, error)
	ListAll() ([]models.Student, error)
	UpdateStatus(id uint, status string) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(student *models.Student) error {
	if err := r.db.Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *studentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *studentRepository) ListByCenter(centerID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.Where("center_id = ?", centerID).Order("added_on DESC").Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (r *studentRepository) ListAll() ([]models.Student, error) {
	var students []models.Student
	if err := r.db.Order("added_on DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (r *studentRepository) UpdateStatus(id uint, status string) error {
	result := r.db.Model(&models.Student{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update student status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}
