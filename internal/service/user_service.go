package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/utils"
)

type UserService struct {
	users       UserStore
	departments DepartmentStore
	bcryptCost  int
	clock       Clock
	logger      zerolog.Logger
}

func NewUserService(users UserStore, departments DepartmentStore, bcryptCost int, clock Clock, logger zerolog.Logger) *UserService {
	return &UserService{
		users:       users,
		departments: departments,
		bcryptCost:  bcryptCost,
		clock:       clock,
		logger:      logger.With().Str("service", "users").Logger(),
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint64
	Role model.Role
}

type RegisterInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	EmployeeID   *string
	DepartmentID *uint64
	Role         model.Role
	WorkType     model.WorkType
	PhoneNumber  *string
}

// UserPatch overwrites only its non-nil fields.  Role and Active may only
// be changed by an ADMIN.
type UserPatch struct {
	Email        *string
	FirstName    *string
	LastName     *string
	EmployeeID   *string
	DepartmentID *uint64
	Role         *model.Role
	WorkType     *model.WorkType
	PhoneNumber  *string
	Active       *bool
}

// Register creates a user.  Emails are unique and stored lower case.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := repository.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, newError(KindValidation, "a valid email is required")
	}
	if err := utils.CheckPasswordPolicy(in.Password); err != nil {
		return nil, &Error{Kind: KindValidation, Msg: err.Error(), Err: err}
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, newError(KindValidation, "first_name and last_name are required")
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !in.Role.Valid() {
		return nil, newError(KindValidation, "invalid role %q", in.Role)
	}
	if in.WorkType == "" {
		in.WorkType = model.WorkStandard
	}
	if !in.WorkType.Valid() {
		return nil, newError(KindValidation, "invalid work type %q", in.WorkType)
	}
	if in.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *in.DepartmentID); err != nil {
			return nil, notFoundAs(err, "department %d not found", *in.DepartmentID)
		}
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		EmployeeID:   trimmed(in.EmployeeID),
		DepartmentID: in.DepartmentID,
		Role:         in.Role,
		WorkType:     in.WorkType,
		PhoneNumber:  trimmed(in.PhoneNumber),
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, userConflict(err)
	}
	s.logger.Info().Uint64("user_id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// Authenticate checks credentials and records the login time.  Unknown
// emails, wrong passwords and inactive users all yield Unauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, newError(KindUnauthorized, "invalid credentials")
	}
	now := s.clock.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint64("user_id", u.ID).Msg("last login not recorded")
	} else {
		u.LastLoginAt = &now
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) { return s.users.List(ctx) }

func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user %d not found", id)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, "user %s not found", repository.NormalizeEmail(email))
	}
	return u, nil
}

// Update applies p on behalf of actor: an ADMIN or the user themself.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint64, p UserPatch) (*model.User, error) {
	if actor.Role != model.RoleAdmin && actor.ID != id {
		return nil, newError(KindForbidden, "cannot modify another user")
	}
	if actor.Role != model.RoleAdmin && (p.Role != nil || p.Active != nil) {
		return nil, newError(KindForbidden, "only an admin can change role or active")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Email != nil {
		email := repository.NormalizeEmail(*p.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, newError(KindValidation, "a valid email is required")
		}
		u.Email = email
	}
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) != "" {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) != "" {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.EmployeeID != nil {
		u.EmployeeID = trimmed(p.EmployeeID)
	}
	if p.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *p.DepartmentID); err != nil {
			return nil, notFoundAs(err, "department %d not found", *p.DepartmentID)
		}
		u.DepartmentID = p.DepartmentID
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return nil, newError(KindValidation, "invalid role %q", *p.Role)
		}
		u.Role = *p.Role
	}
	if p.WorkType != nil {
		if !p.WorkType.Valid() {
			return nil, newError(KindValidation, "invalid work type %q", *p.WorkType)
		}
		u.WorkType = *p.WorkType
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = trimmed(p.PhoneNumber)
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, userConflict(notFoundAs(err, "user %d not found", id))
	}
	return u, nil
}

// ChangePassword replaces the caller's own password after verifying the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, id uint64, current, next string) error {
	if actor.ID != id {
		return newError(KindForbidden, "cannot change another user's password")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return newError(KindUnauthorized, "current password is wrong")
	}
	if err := utils.CheckPasswordPolicy(next); err != nil {
		return &Error{Kind: KindValidation, Msg: err.Error(), Err: err}
	}
	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

// Delete removes the user for good.  Their bookings, assignments and
// tokens go with them.
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return notFoundAs(err, "user %d not found", id)
	}
	s.logger.Info().Uint64("user_id", id).Msg("user deleted")
	return nil
}

func userConflict(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return &Error{Kind: KindDuplicate, Msg: "email already exists", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Kind: KindDuplicate, Msg: "employee id already exists", Err: err}
	}
	return err
}
