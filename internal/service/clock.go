package service

import (
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
)

// Clock supplies the current instant.  "Today" is its calendar day.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Loc (UTC when nil).
type SystemClock struct {
	Loc *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

func today(c Clock) model.Date { return model.DateOf(c.Now()) }
