package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/user-directory/internal/api/dto"
	"github.com/spec-kit/user-directory/internal/domain"
	"github.com/spec-kit/user-directory/internal/service"
	apperrors "github.com/spec-kit/user-directory/pkg/util"
)

// UsersHandler exposes the user directory over HTTP.
type UsersHandler struct {
	directory *service.UserDirectory
	validate  *validator.Validate
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.UserDirectory) *UsersHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &UsersHandler{directory: directory, validate: validate}
}

// ListUsers GET /api/v1/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	var filter service.UserFilter
	if c.Context().QueryArgs().Has("gender") {
		gender := c.Query("gender")
		filter.Gender = &gender
	}

	users, err := h.directory.ListUsers(c.UserContext(), filter)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// GetUser GET /api/v1/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c.Params("id"))
	if err != nil {
		return err
	}

	user, err := h.directory.GetUser(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// CreateUser POST /api/v1/users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	req, err := h.bindUserRequest(c)
	if err != nil {
		return err
	}

	input := service.UserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    normalizeGender(req.Gender),
		Age:       req.Age,
		Email:     req.Email,
	}
	if req.ID != "" {
		if input.ID, err = parseUserID(req.ID); err != nil {
			return err
		}
	}

	user, err := h.directory.CreateUser(c.UserContext(), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateUser PUT /api/v1/users and PUT /api/v1/users/:id.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	req, err := h.bindUserRequest(c)
	if err != nil {
		return err
	}

	rawID := c.Params("id")
	if rawID == "" && req.ID == "" {
		return apperrors.NewValidationError("id required", map[string]any{"field": "id"})
	}
	if rawID == "" {
		rawID = req.ID
	}
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}
	if req.ID != "" {
		bodyID, err := parseUserID(req.ID)
		if err != nil {
			return err
		}
		if bodyID != id {
			return apperrors.NewValidationError("body id does not match path id", map[string]any{"field": "id"})
		}
	}

	user := domain.User{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    normalizeGender(req.Gender),
		Email:     req.Email,
	}
	if req.Age != nil {
		user.Age = *req.Age
	}

	if err := h.directory.UpdateUser(c.UserContext(), user); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// DeleteUser DELETE /api/v1/users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseUserID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.directory.DeleteUser(c.UserContext(), id); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// SeedSampleUsers POST /api/v1/users/test.
func (h *UsersHandler) SeedSampleUsers(c *fiber.Ctx) error {
	users, err := h.directory.SeedSampleUsers(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

func (h *UsersHandler) bindUserRequest(c *fiber.Ctx) (dto.UserRequest, error) {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return req, apperrors.NewValidationError("invalid "+fe.Field(), map[string]any{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	return req, nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid user id", map[string]any{"field": "id"})
	}
	return id, nil
}

func normalizeGender(raw string) domain.Gender {
	return domain.Gender(strings.ToUpper(strings.TrimSpace(raw)))
}
