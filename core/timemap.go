package core

import (
	"fmt"
	"math"
	"time"

	"github.com/benmcmorran/anamericanday/schema"
)

// IndexMapper maps a row index to its position on the timescale axis.
type IndexMapper func(i int) schema.Position

// Epochs of each timescale. The diary day starts at 4 AM and the week on a Sunday.
var (
	dayEpoch  = time.Date(2001, time.July, 4, 4, 0, 0, 0, time.UTC)
	weekEpoch = time.Date(2001, time.July, 1, 0, 0, 0, 0, time.UTC)
	yearEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// LifetimeStartAge is the age of the first lifetime sample.
const LifetimeStartAge = 15

// DateFromMinute maps a minute of the diary day.
func DateFromMinute(i int) schema.Position {
	return schema.TimePosition(dayEpoch.Add(time.Duration(i) * time.Minute))
}

// DateFromDayOfWeek maps a day of the week, 0 being Sunday.
func DateFromDayOfWeek(i int) schema.Position {
	return schema.TimePosition(weekEpoch.AddDate(0, 0, i))
}

// DateFromDayOfYear maps a day of the year, 0 being January 1.
func DateFromDayOfYear(i int) schema.Position {
	return schema.TimePosition(yearEpoch.AddDate(0, 0, i))
}

// AgeFromIndex maps a lifetime sample to an age in years.
func AgeFromIndex(i int) schema.Position {
	return schema.NumberPosition(float64(i + LifetimeStartAge))
}

// MapperFor returns the index mapper of a timescale.
func MapperFor(ts schema.Timescale) (IndexMapper, error) {
	switch ts {
	case schema.DayScale:
		return DateFromMinute, nil
	case schema.WeekScale:
		return DateFromDayOfWeek, nil
	case schema.YearScale:
		return DateFromDayOfYear, nil
	case schema.LifetimeScale:
		return AgeFromIndex, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimescale, ts)
	}
}

// DateToIndex inverts MapperFor: whole minutes or days elapsed since the epoch,
// or whole years past the starting age.
func DateToIndex(ts schema.Timescale, p schema.Position) (int, error) {
	switch ts {
	case schema.DayScale:
		return floorDiv(p.Time.Sub(dayEpoch), time.Minute), nil
	case schema.WeekScale:
		return floorDiv(p.Time.Sub(weekEpoch), 24*time.Hour), nil
	case schema.YearScale:
		return floorDiv(p.Time.Sub(yearEpoch), 24*time.Hour), nil
	case schema.LifetimeScale:
		return int(math.Floor(p.Number - LifetimeStartAge)), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimescale, ts)
	}
}

func floorDiv(d, unit time.Duration) int {
	q := d / unit
	if d%unit < 0 {
		q--
	}
	return int(q)
}

// Describe renders the heading shown above a breakdown at the given position.
func Describe(ts schema.Timescale, p *schema.Position) string {
	if p == nil {
		return "On an average day"
	}
	switch ts {
	case schema.DayScale:
		return "At " + p.Time.Format("3:04 PM")
	case schema.WeekScale:
		return "On " + p.Time.Format("Monday")
	case schema.YearScale:
		return "On " + p.Time.Format("January 2")
	case schema.LifetimeScale:
		return fmt.Sprintf("At %d years old", int(math.Floor(p.Number)))
	default:
		return ""
	}
}
