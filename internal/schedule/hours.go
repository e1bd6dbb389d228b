// Package schedule implements the delivery and pickup time-slot scheduler:
// business-hours resolution, bookable slot generation, and the "as soon as
// possible" availability check.
//
// Every function in this package is a pure computation over explicit inputs.
// The current time is always passed in, already localized to the shop
// timezone — there is no ambient clock or process-wide timezone state.
package schedule

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Mode selects the fulfillment channel an order uses.
type Mode string

const (
	// ModeDelivery is courier delivery to the customer address.
	ModeDelivery Mode = "delivery"
	// ModePickup is customer pickup at the shop.
	ModePickup Mode = "pickup"
)

// ErrInvalidMode is returned for a mode string that is neither delivery nor
// pickup.
var ErrInvalidMode = errors.New("unknown fulfillment mode")

// ParseMode validates a wire-level mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDelivery, ModePickup:
		return Mode(s), nil
	default:
		return "", errors.Wrapf(ErrInvalidMode, "%q", s)
	}
}

// ClockTime is a wall-clock time of day without a date or zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a "HH:MM" string.
func ParseClock(s string) (ClockTime, error) {
	var c ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return ClockTime{}, errors.Wrapf(err, "parse clock time %q", s)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return ClockTime{}, errors.Errorf("clock time out of range: %q", s)
	}
	return c, nil
}

// MustClock is ParseClock for static configuration values; it panics on
// malformed input.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// At anchors the clock time on the given calendar date, in that date's location.
func (c ClockTime) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

// DayHours is an open/close pair for one weekday class.
type DayHours struct {
	Open  ClockTime
	Close ClockTime
}

// ModeHours holds the weekday and weekend hour tables for one fulfillment mode.
type ModeHours struct {
	Weekday DayHours
	Weekend DayHours
}

// Config is an immutable snapshot of the shop scheduling configuration.
// It is owned by the external settings store; this package only reads it.
type Config struct {
	Delivery ModeHours
	Pickup   ModeHours

	// StepMinutes is the nominal slot length.
	StepMinutes int
	// ProcessingMinutes is how long order preparation takes; same-day slots
	// starting earlier than now+ProcessingMinutes are not offered.
	ProcessingMinutes int
	// CloseCutoffMinutes is how long before closing the ASAP option stops
	// being offered.
	CloseCutoffMinutes int
	// Timezone is the IANA name of the shop timezone.
	Timezone string
}

// Location resolves the configured shop timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", c.Timezone)
	}
	return loc, nil
}

// ResolveHours returns the open/close pair for the given date and mode.
// Monday through Friday use the weekday table, Saturday and Sunday the
// weekend table. The config is assumed complete, so there is no error path.
func ResolveHours(date time.Time, mode Mode, cfg *Config) DayHours {
	hours := cfg.Delivery
	if mode == ModePickup {
		hours = cfg.Pickup
	}
	if isWeekend(date.Weekday()) {
		return hours.Weekend
	}
	return hours.Weekday
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
