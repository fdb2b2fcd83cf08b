package handlers

import (
	"errors"

	"admitdesk/internal/middleware"
	"admitdesk/internal/models"
	"admitdesk/internal/services/ledger"
	"admitdesk/internal/services/student"
	"admitdesk/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type StudentHandler struct {
	studentService student.Service
}

func NewStudentHandler(studentService student.Service) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

// Enroll records a student application and debits the enrollment fee.
func (h *StudentHandler) Enroll(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Name          string  `json:"name"`
		Email         string  `json:"email"`
		Phone         string  `json:"phone"`
		Course        string  `json:"course"`
		EnrollmentFee float64 `json:"enrollmentFee"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	created, err := h.studentService.Enroll(c.Context(), claims, student.EnrollInput{
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Course:        input.Course,
		EnrollmentFee: input.EnrollmentFee,
	})
	if err != nil {
		switch {
		case errors.Is(err, student.ErrForbidden):
			return utils.Forbidden(c, "insufficient permissions")
		case errors.Is(err, student.ErrInvalidStudent):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return utils.BadRequest(c, "insufficient wallet balance for enrollment fee")
		}
		return utils.InternalError(c, "failed to enroll student")
	}

	return utils.Created(c, "Student application recorded", created)
}

// List returns applications scoped to the caller's role.
func (h *StudentHandler) List(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	students, err := h.studentService.List(c.Context(), claims)
	if err != nil {
		if errors.Is(err, student.ErrForbidden) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return utils.InternalError(c, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return c.JSON(students)
}

// UpdateStatus moves an application through its lifecycle.
func (h *StudentHandler) UpdateStatus(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid student id")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	updated, err := h.studentService.UpdateStatus(c.Context(), claims, uint(id), input.Status)
	if err != nil {
		switch {
		case errors.Is(err, student.ErrForbidden):
			return utils.Forbidden(c, "insufficient permissions")
		case errors.Is(err, student.ErrInvalidStatus):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, student.ErrStudentNotFound):
			return utils.NotFound(c, "student not found")
		}
		return utils.InternalError(c, "failed to update student status")
	}

	return utils.Success(c, "Student status updated", updated)
}
