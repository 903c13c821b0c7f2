package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Defaults(t *testing.T) {
	params, err := Build(DefaultFilter(), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "1", params.Get(ParamPage))
	assert.Equal(t, "10", params.Get(ParamPageSize))
	assert.Len(t, params, 2)
}

func TestBuild_FilterPresence(t *testing.T) {
	values := []string{"", "2024-05-01"}

	// Every combination of empty and non-empty date fields.
	for mask := 0; mask < 1<<len(DateFields); mask++ {
		f := DefaultFilter()
		for i, field := range DateFields {
			f.Dates[field] = values[(mask>>i)&1]
		}

		params, err := Build(f, time.UTC)
		require.NoError(t, err)

		for i, field := range DateFields {
			want := (mask>>i)&1 == 1
			assert.Equal(t, want, params.Has(field.Param()), "mask %04b field %s", mask, field.Label())
		}
		assert.True(t, params.Has(ParamPage))
		assert.True(t, params.Has(ParamPageSize))
	}
}

func TestBuild_WhitespaceDateIsAbsent(t *testing.T) {
	f := DefaultFilter()
	f.Dates[CreatedFrom] = "   "

	params, err := Build(f, time.UTC)
	require.NoError(t, err)
	assert.False(t, params.Has(ParamStartCreatedAt))
}

func TestBuild_LocalMidnightToUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	newYork := time.FixedZone("EST", -5*60*60)

	f := DefaultFilter()
	f.Dates[CreatedFrom] = "2024-01-15"
	f.Dates[UpdatedTo] = "2024-01-15"

	params, err := Build(f, tokyo)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14T15:00:00.000Z", params.Get(ParamStartCreatedAt))
	assert.Equal(t, "2024-01-14T15:00:00.000Z", params.Get(ParamEndUpdatedAt))

	// The same local date in another zone maps to a different instant.
	params, err = Build(f, newYork)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T05:00:00.000Z", params.Get(ParamStartCreatedAt))
}

func TestBuild_Deterministic(t *testing.T) {
	loc := time.FixedZone("CET", 60*60)
	f := DefaultFilter()
	f.Dates[CreatedTo] = "2023-12-31"

	first, err := Build(f, loc)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Build(f, loc)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_AbsoluteTimestampNormalized(t *testing.T) {
	f := DefaultFilter()
	f.Dates[UpdatedFrom] = "2024-02-01T12:30:00+02:00"

	params, err := Build(f, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01T10:30:00.000Z", params.Get(ParamStartUpdatedAt))
}

func TestBuild_InvalidDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not-a-date"},
		{"impossible day", "2024-02-30"},
		{"month 13", "2024-13-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilter()
			f.Dates[CreatedTo] = tt.value

			params, err := Build(f, time.UTC)
			assert.Nil(t, params)
			require.Error(t, err)

			var parseErr *DateParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, CreatedTo, parseErr.Field)
			assert.Equal(t, tt.value, parseErr.Value)
		})
	}
}

func TestFilter_HasDates(t *testing.T) {
	f := DefaultFilter()
	assert.False(t, f.HasDates())

	f.Dates[UpdatedTo] = "2024-01-01"
	assert.True(t, f.HasDates())
	assert.Equal(t, "2024-01-01", f.Date(UpdatedTo))
	assert.Equal(t, "", f.Date(DateField(42)))
}

func TestDateField_Param(t *testing.T) {
	assert.Equal(t, ParamStartCreatedAt, CreatedFrom.Param())
	assert.Equal(t, ParamEndCreatedAt, CreatedTo.Param())
	assert.Equal(t, ParamStartUpdatedAt, UpdatedFrom.Param())
	assert.Equal(t, ParamEndUpdatedAt, UpdatedTo.Param())
	assert.False(t, DateField(-1).Valid())
}
