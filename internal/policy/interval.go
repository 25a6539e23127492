package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidOffset   = errors.New("invalid offset")
)

// SchemeKind enumerates the supported bucketing schemes.
type SchemeKind int

const (
	SchemeDaily SchemeKind = iota
	SchemeWeekly
	SchemeMonthly
	SchemeBiyearly
	SchemeYearly
	SchemeCustomDays
)

// julianDayUnixEpoch is the Julian day number of 1970-01-01.
// Day 1 of the proleptic Gregorian calendar (0001-01-01) is Julian day 1721426.
const julianDayUnixEpoch = 2440588

// Scheme maps timestamps onto interval buckets.
// Days is only meaningful for SchemeCustomDays and is always > 0 there.
type Scheme struct {
	Kind SchemeKind
	Days int
}

// BucketKey identifies the bucket a timestamp falls into. Only equality is meaningful,
// and only between keys produced by the same scheme.
type BucketKey [3]int

var namedSchemes = map[string]SchemeKind{
	"daily":    SchemeDaily,
	"weekly":   SchemeWeekly,
	"monthly":  SchemeMonthly,
	"biyearly": SchemeBiyearly,
	"yearly":   SchemeYearly,
}

// CustomDays returns a fixed N-day scheme.
func CustomDays(n int) (Scheme, error) {
	if n <= 0 {
		return Scheme{}, fmt.Errorf("%w: custom interval must be at least 1 day, got %d", ErrInvalidInterval, n)
	}
	return Scheme{Kind: SchemeCustomDays, Days: n}, nil
}

// ResolveScheme parses an interval specifier: one of daily, weekly, monthly,
// biyearly, yearly, or "<n>d" with n > 0.
func ResolveScheme(value string) (Scheme, error) {
	value = strings.TrimSpace(value)

	if kind, ok := namedSchemes[value]; ok {
		return Scheme{Kind: kind}, nil
	}

	days, ok := daysFromString(value)
	if !ok {
		return Scheme{}, fmt.Errorf("%w '%s'; must be daily, weekly, monthly, biyearly, yearly or <n>d", ErrInvalidInterval, value)
	}
	return CustomDays(days)
}

// ResolveOffset parses a signed day count in the form "<n>d" (e.g. "5d", "-3d", "0d").
func ResolveOffset(value string) (int, error) {
	days, ok := daysFromString(value)
	if !ok {
		return 0, fmt.Errorf("%w '%s'; must be <n>d", ErrInvalidOffset, strings.TrimSpace(value))
	}
	return days, nil
}

// daysFromString accepts an optionally signed integer followed by a single 'd'.
func daysFromString(value string) (int, bool) {
	value = strings.TrimSpace(value)
	digits, found := strings.CutSuffix(value, "d")
	if !found || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String renders the scheme the way it is written in the config file.
func (s Scheme) String() string {
	switch s.Kind {
	case SchemeDaily:
		return "daily"
	case SchemeWeekly:
		return "weekly"
	case SchemeMonthly:
		return "monthly"
	case SchemeBiyearly:
		return "biyearly"
	case SchemeYearly:
		return "yearly"
	case SchemeCustomDays:
		return strconv.Itoa(s.Days) + "d"
	default:
		return fmt.Sprintf("scheme(%d)", int(s.Kind))
	}
}

// BucketKey returns the bucket of t under the scheme.
func (s Scheme) BucketKey(t time.Time) BucketKey {
	switch s.Kind {
	case SchemeDaily:
		return BucketKey{t.Year(), int(t.Month()), t.Day()}
	case SchemeWeekly:
		year, week := t.ISOWeek()
		return BucketKey{year, week, 0}
	case SchemeMonthly:
		return BucketKey{t.Year(), int(t.Month()), 0}
	case SchemeBiyearly:
		half := 1
		if t.Month() > time.June {
			half = 2
		}
		return BucketKey{t.Year(), half, 0}
	case SchemeYearly:
		return BucketKey{t.Year(), 0, 0}
	case SchemeCustomDays:
		return BucketKey{JulianDay(t) / s.Days, 0, 0}
	default:
		panic(fmt.Sprintf("policy: unknown scheme kind %d", int(s.Kind)))
	}
}

// JulianDay returns the Julian day number of t's calendar date.
func JulianDay(t time.Time) int {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix()/86400) + julianDayUnixEpoch
}
