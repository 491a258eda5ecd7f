package core

import (
	"testing"
	"time"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapperFor(t *testing.T) {
	tests := []struct {
		ts    schema.Timescale
		index int
		want  schema.Position
	}{
		{schema.DayScale, 0, schema.TimePosition(time.Date(2001, 7, 4, 4, 0, 0, 0, time.UTC))},
		{schema.DayScale, 1439, schema.TimePosition(time.Date(2001, 7, 5, 3, 59, 0, 0, time.UTC))},
		{schema.WeekScale, 0, schema.TimePosition(time.Date(2001, 7, 1, 0, 0, 0, 0, time.UTC))},
		{schema.WeekScale, 6, schema.TimePosition(time.Date(2001, 7, 7, 0, 0, 0, 0, time.UTC))},
		{schema.YearScale, 0, schema.TimePosition(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))},
		{schema.YearScale, 364, schema.TimePosition(time.Date(2001, 12, 31, 0, 0, 0, 0, time.UTC))},
		{schema.LifetimeScale, 0, schema.NumberPosition(15)},
		{schema.LifetimeScale, 70, schema.NumberPosition(85)},
	}

	for _, tt := range tests {
		t.Run(string(tt.ts), func(t *testing.T) {
			mapper, err := MapperFor(tt.ts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mapper(tt.index))

			back, err := DateToIndex(tt.ts, mapper(tt.index))
			require.NoError(t, err)
			assert.Equal(t, tt.index, back)
		})
	}
}

func TestMapperFor_Unknown(t *testing.T) {
	_, err := MapperFor("decade")
	assert.ErrorIs(t, err, ErrUnknownTimescale)

	_, err = DateToIndex("decade", schema.NumberPosition(1))
	assert.ErrorIs(t, err, ErrUnknownTimescale)
}

func TestDateToIndex_Floors(t *testing.T) {
	// Half a minute past the epoch is still the first minute.
	i, err := DateToIndex(schema.DayScale, schema.TimePosition(dayEpoch.Add(30*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	// Half a minute before the epoch floors below it.
	i, err = DateToIndex(schema.DayScale, schema.TimePosition(dayEpoch.Add(-30*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, -1, i)

	i, err = DateToIndex(schema.WeekScale, schema.TimePosition(weekEpoch.Add(50*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	i, err = DateToIndex(schema.LifetimeScale, schema.NumberPosition(20.9))
	require.NoError(t, err)
	assert.Equal(t, 5, i)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "On an average day", Describe(schema.DayScale, nil))

	day := DateFromMinute(0)
	assert.Equal(t, "At 4:00 AM", Describe(schema.DayScale, &day))
	evening := DateFromMinute(15*60 + 30)
	assert.Equal(t, "At 7:30 PM", Describe(schema.DayScale, &evening))

	week := DateFromDayOfWeek(0)
	assert.Equal(t, "On Sunday", Describe(schema.WeekScale, &week))

	year := DateFromDayOfYear(184)
	assert.Equal(t, "On July 4", Describe(schema.YearScale, &year))

	age := AgeFromIndex(0)
	assert.Equal(t, "At 15 years old", Describe(schema.LifetimeScale, &age))
}
