package student

import (
	"context"
	"errors"
	"fmt"

	"admitdesk/internal/models"
	"admitdesk/internal/repositories"
	"admitdesk/internal/services/ledger"
	"admitdesk/internal/validation"
)

var (
	ErrForbidden       = errors.New("operation not permitted for this role")
	ErrInvalidStudent  = errors.New("invalid student application")
	ErrInvalidStatus   = errors.New("invalid student status")
	ErrStudentNotFound = errors.New("student not found")
)

// EnrollInput is a student application. When EnrollmentFee is positive the
// fee is debited from the caller's center wallet before the record is
// created.
type EnrollInput struct {
	Name          string
	Email         string
	Phone         string
	Course        string
	EnrollmentFee float64
}

// Service manages student applications.
type Service interface {
	Enroll(ctx context.Context, caller *models.UserClaims, in EnrollInput) (*models.Student, error)
	List(ctx context.Context, caller *models.UserClaims) ([]models.Student, error)
	UpdateStatus(ctx context.Context, caller *models.UserClaims, id uint, status string) (*models.Student, error)
}

type service struct {
	repo   repositories.StudentRepository
	ledger ledger.Service
}

func NewService(repo repositories.StudentRepository, ledgerSvc ledger.Service) Service {
	if repo == nil {
		panic("student repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{
		repo:   repo,
		ledger: ledgerSvc,
	}
}

func (s *service) Enroll(ctx context.Context, caller *models.UserClaims, in EnrollInput) (*models.Student, error) {
	if !caller.Role.Can(models.CapEnrollStudents) || caller.CenterID == 0 {
		return nil, ErrForbidden
	}

	student := &models.Student{
		CenterID:      caller.CenterID,
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Course:        in.Course,
		Status:        models.StudentApplied,
		EnrollmentFee: in.EnrollmentFee,
	}

	v := validation.New()
	v.Student(student)
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStudent, v.Error())
	}

	// The fee is charged before the record exists; a failed insert after a
	// successful debit is surfaced loudly rather than silently refunded,
	// since the ledger event already carries the audit trail.
	if in.EnrollmentFee > 0 {
		note := fmt.Sprintf("enrollment fee for %s", in.Name)
		if err := s.ledger.ChargeEnrollment(ctx, caller.CenterID, in.EnrollmentFee, caller.UserID, note); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(student); err != nil {
		return nil, fmt.Errorf("failed to create student after fee debit: %w", err)
	}
	return student, nil
}

func (s *service) List(ctx context.Context, caller *models.UserClaims) ([]models.Student, error) {
	if caller.Role == models.RoleSuperadmin {
		return s.repo.ListAll()
	}
	if caller.CenterID == 0 {
		return nil, ErrForbidden
	}
	return s.repo.ListByCenter(caller.CenterID)
}

func (s *service) UpdateStatus(ctx context.Context, caller *models.UserClaims, id uint, status string) (*models.Student, error) {
	switch status {
	case models.StudentApplied, models.StudentEnrolled, models.StudentRejected:
	default:
		return nil, ErrInvalidStatus
	}

	student, err := s.repo.GetByID(id)
	if err != nil {
		if err == repositories.ErrStudentNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// Center admins may only touch their own center's applications.
	if caller.Role == models.RoleAdmin && caller.CenterID != student.CenterID {
		return nil, ErrForbidden
	}

	if err := s.repo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	student.Status = status
	return student, nil
}
