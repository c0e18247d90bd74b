package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
)

func register(t *testing.T, e *env, email string, role model.Role) *model.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, RegisterInput{Email: email, Password: "correct-horse", FirstName: "Ada", LastName: "Lovelace", Role: role})
	require.NoError(t, err)
	return u
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t, monday)
	u := register(t, e, "  Ada@Example.COM ", "")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	_, err := e.users.Register(e.ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := e.users.Authenticate(e.ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastLoginAt)

	_, err = e.users.Authenticate(e.ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.users.Authenticate(e.ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserService_RegisterValidates(t *testing.T) {
	e := newEnv(t, monday)
	cases := []RegisterInput{
		{Email: "not-an-email", Password: "correct-horse", FirstName: "A", LastName: "B"},
		{Email: "a@example.com", Password: "short", FirstName: "A", LastName: "B"},
		{Email: "a@example.com", Password: "correct-horse", FirstName: " ", LastName: "B"},
		{Email: "a@example.com", Password: "correct-horse", FirstName: "A", LastName: "B", Role: "ROOT"},
		{Email: "a@example.com", Password: "correct-horse", FirstName: "A", LastName: "B", WorkType: "NIGHT"},
	}
	for _, in := range cases {
		_, err := e.users.Register(e.ctx, in)
		assert.ErrorIs(t, err, ErrValidation, "%+v", in)
	}
}

func TestUserService_InactiveCannotAuthenticate(t *testing.T) {
	e := newEnv(t, monday)
	admin := register(t, e, "admin@example.com", model.RoleAdmin)
	u := register(t, e, "ada@example.com", "")

	inactive := false
	_, err := e.users.Update(e.ctx, Actor{ID: admin.ID, Role: model.RoleAdmin}, u.ID, UserPatch{Active: &inactive})
	require.NoError(t, err)

	_, err = e.users.Authenticate(e.ctx, "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserService_UpdatePermissions(t *testing.T) {
	e := newEnv(t, monday)
	a := register(t, e, "a@example.com", "")
	b := register(t, e, "b@example.com", "")
	self := Actor{ID: a.ID, Role: model.RoleUser}

	_, err := e.users.Update(e.ctx, self, b.ID, UserPatch{FirstName: strp("Eve")})
	assert.ErrorIs(t, err, ErrForbidden)

	admin := model.RoleAdmin
	_, err = e.users.Update(e.ctx, self, a.ID, UserPatch{Role: &admin})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := e.users.Update(e.ctx, self, a.ID, UserPatch{FirstName: strp(" Grace "), PhoneNumber: strp("555-0100")})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)
	assert.Equal(t, "555-0100", *got.PhoneNumber)

	_, err = e.users.Update(e.ctx, self, a.ID, UserPatch{Email: strp("B@example.com")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserService_ChangePassword(t *testing.T) {
	e := newEnv(t, monday)
	u := register(t, e, "ada@example.com", "")
	self := Actor{ID: u.ID, Role: model.RoleUser}

	assert.ErrorIs(t, e.users.ChangePassword(e.ctx, self, u.ID, "bad-guess", "new-password"), ErrUnauthorized)
	assert.ErrorIs(t, e.users.ChangePassword(e.ctx, self, u.ID, "correct-horse", "short"), ErrValidation)
	assert.ErrorIs(t, e.users.ChangePassword(e.ctx, Actor{ID: u.ID + 1}, u.ID, "correct-horse", "new-password"), ErrForbidden)
	require.NoError(t, e.users.ChangePassword(e.ctx, self, u.ID, "correct-horse", "new-password"))

	_, err := e.users.Authenticate(e.ctx, "ada@example.com", "new-password")
	require.NoError(t, err)
}

func TestUserService_Delete(t *testing.T) {
	e := newEnv(t, monday)
	u := register(t, e, "ada@example.com", "")
	require.NoError(t, e.users.Delete(e.ctx, u.ID))
	_, err := e.users.Get(e.ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.users.Delete(e.ctx, u.ID), ErrNotFound)
}
