package handlers

import (
	"errors"
	"strings"

	"admitdesk/internal/middleware"
	"admitdesk/internal/services/center"
	"admitdesk/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CenterHandler struct {
	centerService center.Service
}

func NewCenterHandler(centerService center.Service) *CenterHandler {
	return &CenterHandler{
		centerService: centerService,
	}
}

// Register creates a center, optionally with an admin login and an opening
// wallet balance.
func (h *CenterHandler) Register(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Code            string  `json:"code"`
		Name            string  `json:"name"`
		University      string  `json:"university"`
		Email           string  `json:"email"`
		Contact         string  `json:"contact"`
		AdminName       string  `json:"adminName"`
		AdminPassword   string  `json:"adminPassword"`
		OpeningBalance  float64 `json:"openingBalance"`
		SubCenterAccess bool    `json:"subCenterAccess"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	created, err := h.centerService.Register(c.Context(), claims, center.RegisterInput{
		Code:            input.Code,
		Name:            input.Name,
		University:      input.University,
		Email:           input.Email,
		Contact:         input.Contact,
		AdminName:       input.AdminName,
		AdminPassword:   input.AdminPassword,
		OpeningBalance:  input.OpeningBalance,
		SubCenterAccess: input.SubCenterAccess,
	})
	if err != nil {
		switch {
		case errors.Is(err, center.ErrForbidden):
			return utils.Forbidden(c, "insufficient permissions")
		case errors.Is(err, center.ErrInvalidCenter):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, center.ErrDuplicateCode):
			return utils.BadRequest(c, "center code already in use")
		}
		return utils.InternalError(c, "failed to register center")
	}

	return utils.Created(c, "Center registered", created)
}

// GetByCode looks up one center.
func (h *CenterHandler) GetByCode(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))

	ctr, err := h.centerService.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, center.ErrCenterNotFound) {
			return utils.NotFound(c, "center not found")
		}
		return utils.InternalError(c, "failed to get center")
	}
	return c.JSON(ctr)
}

// UpdateFlags toggles the status and sub-center access flags.
func (h *CenterHandler) UpdateFlags(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid center id")
	}

	var input struct {
		Status          bool `json:"status"`
		SubCenterAccess bool `json:"subCenterAccess"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	ctr, err := h.centerService.UpdateFlags(c.Context(), claims, uint(id), input.Status, input.SubCenterAccess)
	if err != nil {
		switch {
		case errors.Is(err, center.ErrForbidden):
			return utils.Forbidden(c, "insufficient permissions")
		case errors.Is(err, center.ErrCenterNotFound):
			return utils.NotFound(c, "center not found")
		}
		return utils.InternalError(c, "failed to update center flags")
	}

	return utils.Success(c, "Center flags updated", ctr)
}
