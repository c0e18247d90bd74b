package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type UserHandler struct {
	Users  *service.UserService
	Logger zerolog.Logger
}

func NewUserHandler(users *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

type createUserReq struct {
	registerReq
	Role string `json:"role"`
}

type userPatchReq struct {
	Email        *string         `json:"email"`
	FirstName    *string         `json:"first_name"`
	LastName     *string         `json:"last_name"`
	EmployeeID   *string         `json:"employee_id"`
	DepartmentID *uint64         `json:"department_id"`
	Role         *model.Role     `json:"role"`
	WorkType     *model.WorkType `json:"work_type"`
	PhoneNumber  *string         `json:"phone_number"`
	Active       *bool           `json:"active"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// List returns every user, or the one with ?email=.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	if email := strings.TrimSpace(c.QueryParam("email")); email != "" {
		u, err := h.Users.GetByEmail(ctx, email)
		if err != nil {
			return fail(c, h.Logger, err)
		}
		return c.JSON(http.StatusOK, []*model.User{u})
	}
	out, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if !selfOrStaff(c, id) {
		return forbidden(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Create adds a user with any role.  Admin only.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.Register(ctx, service.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmployeeID:   req.EmployeeID,
		DepartmentID: req.DepartmentID,
		Role:         model.Role(strings.ToUpper(strings.TrimSpace(req.Role))),
		WorkType:     model.WorkType(strings.ToUpper(strings.TrimSpace(req.WorkType))),
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.Update(ctx, actor(c), id, service.UserPatch(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Users.ChangePassword(ctx, actor(c), id, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
