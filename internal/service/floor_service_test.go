package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorService(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 2)
	e.floor(t, 1)

	_, err := e.floors.Create(e.ctx, FloorInput{FloorNumber: 2, Name: "Again"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = e.floors.Create(e.ctx, FloorInput{FloorNumber: 3})
	assert.ErrorIs(t, err, ErrValidation)

	byNumber, err := e.floors.GetByNumber(e.ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, f.ID, byNumber.ID)

	all, err := e.floors.List(e.ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].FloorNumber)

	require.NoError(t, e.floors.Delete(e.ctx, f.ID))
	active, err := e.floors.ListActive(e.ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].FloorNumber)

	_, err = e.floors.Get(e.ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDepartmentService(t *testing.T) {
	e := newEnv(t, monday)

	d, err := e.departments.Create(e.ctx, DepartmentInput{Name: "Finance", Code: " fin "})
	require.NoError(t, err)
	assert.Equal(t, "FIN", d.Code)

	_, err = e.departments.Create(e.ctx, DepartmentInput{Name: "Other finance", Code: "FIN"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = e.departments.Create(e.ctx, DepartmentInput{Name: "Ops", Code: "OPS", FloorID: ptrU(99)})
	assert.ErrorIs(t, err, ErrNotFound)

	renamed, err := e.departments.Update(e.ctx, d.ID, DepartmentPatch{Name: strp("Finance & Control")})
	require.NoError(t, err)
	assert.Equal(t, "Finance & Control", renamed.Name)

	require.NoError(t, e.departments.Delete(e.ctx, d.ID))
	got, err := e.departments.Get(e.ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func ptrU(v uint64) *uint64 { return &v }
