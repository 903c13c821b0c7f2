package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/honganh1206/convodash/schema"
)

const (
	ParamPage           = "page"
	ParamPageSize       = "page_size"
	ParamStartCreatedAt = "start_created_at"
	ParamEndCreatedAt   = "end_created_at"
	ParamStartUpdatedAt = "start_updated_at"
	ParamEndUpdatedAt   = "end_updated_at"
)

// Params lists every parameter name the dashboard sends and the gateway forwards.
var Params = []string{
	ParamPage,
	ParamPageSize,
	ParamStartCreatedAt,
	ParamEndCreatedAt,
	ParamStartUpdatedAt,
	ParamEndUpdatedAt,
}

// ISO 8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type DateField int

const (
	CreatedFrom DateField = iota
	CreatedTo
	UpdatedFrom
	UpdatedTo

	numDateFields
)

// DateFields in display order.
var DateFields = []DateField{CreatedFrom, CreatedTo, UpdatedFrom, UpdatedTo}

func (f DateField) Param() string {
	switch f {
	case CreatedFrom:
		return ParamStartCreatedAt
	case CreatedTo:
		return ParamEndCreatedAt
	case UpdatedFrom:
		return ParamStartUpdatedAt
	case UpdatedTo:
		return ParamEndUpdatedAt
	}
	return ""
}

func (f DateField) Label() string {
	switch f {
	case CreatedFrom:
		return "Created From"
	case CreatedTo:
		return "Created To"
	case UpdatedFrom:
		return "Updated From"
	case UpdatedTo:
		return "Updated To"
	}
	return fmt.Sprintf("DateField(%d)", int(f))
}

func (f DateField) Valid() bool {
	return f >= 0 && f < numDateFields
}

// Filter is the user-editable query state. Date values hold raw local input;
// an empty value means the bound is absent.
type Filter struct {
	Page     int
	PageSize int
	Dates    [numDateFields]string
}

func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: schema.DefaultPageSize,
	}
}

func (f Filter) Date(field DateField) string {
	if !field.Valid() {
		return ""
	}
	return f.Dates[field]
}

func (f Filter) HasDates() bool {
	for _, v := range f.Dates {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

type DateParseError struct {
	Field DateField
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid %s date %q: %v", e.Field.Label(), e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// Build turns a filter into the outgoing parameter set. page and page_size
// are always present; a date parameter is present only when its field holds
// a non-empty value. Bare dates are read as midnight in loc.
func Build(f Filter, loc *time.Location) (url.Values, error) {
	if loc == nil {
		loc = time.Local
	}

	params := url.Values{}
	params.Set(ParamPage, strconv.Itoa(f.Page))
	params.Set(ParamPageSize, strconv.Itoa(f.PageSize))

	for _, field := range DateFields {
		raw := strings.TrimSpace(f.Dates[field])
		if raw == "" {
			continue
		}

		ts, err := NormalizeDate(raw, loc)
		if err != nil {
			return nil, &DateParseError{Field: field, Value: raw, Err: err}
		}
		params.Set(field.Param(), ts)
	}

	return params, nil
}

// Layouts without a zone are interpreted in the caller's location.
var localLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// NormalizeDate converts a local date (or an absolute timestamp) into the UTC
// timestamp sent upstream.
func NormalizeDate(raw string, loc *time.Location) (string, error) {
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC().Format(TimestampLayout), nil
		}
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(TimestampLayout), nil
		}
	}
	return "", fmt.Errorf("unable to parse %q as a calendar date", raw)
}
