package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/database/dbtest"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/service"
)

const sample = `
floors:
  - number: 0
    name: Ground
    code: GF
  - number: 1
    name: ${SEED_FIRST_FLOOR_NAME}
departments:
  - name: Engineering
    code: eng
    floor: 1
  - name: Sales
    code: SAL
holidays:
  - date: "2024-12-25"
    name: Christmas
    recurring: true
  - date: "2024-08-16"
    name: Summer closure
    type: company_closure
`

func TestLoad(t *testing.T) {
	t.Setenv("SEED_FIRST_FLOOR_NAME", "Open space")
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Floors, 2)
	assert.Equal(t, "Open space", f.Floors[1].Name)
	require.Len(t, f.Departments, 2)
	require.NotNil(t, f.Departments[0].Floor)
	assert.Equal(t, 1, *f.Departments[0].Floor)
	assert.True(t, f.Holidays[0].Recurring)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"duplicate floor": "floors:\n  - {number: 1, name: A}\n  - {number: 1, name: B}\n",
		"missing code":    "departments:\n  - {name: Ops}\n",
		"bad date":        "holidays:\n  - {date: 25/12/2024, name: Xmas}\n",
		"bad type":        "holidays:\n  - {date: 2024-12-25, name: Xmas, type: party}\n",
		"not yaml":        "floors: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeeder_ApplyIsIdempotent(t *testing.T) {
	t.Setenv("SEED_FIRST_FLOOR_NAME", "Open space")
	db := dbtest.New(t)
	logger := zerolog.Nop()
	tx := repository.NewTxManager(db)
	floorRepo := repository.NewFloorRepo(db)
	floors := service.NewFloorService(floorRepo, logger)
	departments := service.NewDepartmentService(repository.NewDepartmentRepo(db), floorRepo, logger)
	holidays := service.NewHolidayCalendar(tx, repository.NewHolidayRepo(db), logger)
	s := NewSeeder(floors, departments, holidays, logger)
	ctx := context.Background()

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	res, err := s.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Result{Floors: 2, Departments: 2, Holidays: 2}, res)

	res, err = s.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	eng, err := repository.NewDepartmentRepo(db).GetByCode(ctx, "ENG")
	require.NoError(t, err)
	first, err := floors.GetByNumber(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, eng.FloorID)
	assert.Equal(t, first.ID, *eng.FloorID)

	closure, err := holidays.InRange(ctx, model.NewDate(2024, time.August, 16), model.NewDate(2024, time.August, 16))
	require.NoError(t, err)
	require.Len(t, closure, 1)
	assert.Equal(t, model.HolidayCompanyClosure, closure[0].Type)
}
