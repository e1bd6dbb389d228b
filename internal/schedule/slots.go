package schedule

import (
	"time"

	"github.com/go-faster/errors"
)

// ErrInvalidDate is returned when a slot query carries a malformed date
// string. Callers that want the legacy "malformed means no slots" behaviour
// can treat it as an empty result; the HTTP layer reports it as a client
// error instead.
var ErrInvalidDate = errors.New("invalid date")

// dateLayout is the wire format for slot query dates.
const dateLayout = "2006-01-02"

// minSlotLength is the shortest trailing window worth offering. A remainder
// below this is dropped rather than shown as a degenerate slot.
const minSlotLength = 30 * time.Minute

// Slot is a single bookable time window.
type Slot struct {
	Start time.Time
	End   time.Time
	Label string
}

// Generate produces the ordered list of bookable windows for the given date
// and mode. now must already be localized to the shop timezone; the date
// string is interpreted in that same location.
//
// Past dates yield an empty list. For today, windows starting before
// now+ProcessingMinutes are filtered out: a window already straddling "now"
// is dropped entirely, never partially offered. When the configured close
// time is not after the open time the shop is treated as operating past
// midnight and the window extends into the next calendar day.
func Generate(dateStr string, mode Mode, cfg *Config, now time.Time) ([]Slot, error) {
	date, err := time.ParseInLocation(dateLayout, dateStr, now.Location())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDate, "%q", dateStr)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return nil, nil
	}

	hours := ResolveHours(date, mode, cfg)
	start := hours.Open.At(date)
	end := hours.Close.At(date)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	step := time.Duration(cfg.StepMinutes) * time.Minute
	sameDay := date.Equal(today)
	cutoff := now.Add(time.Duration(cfg.ProcessingMinutes) * time.Minute)

	var slots []Slot
	for current := start; current.Before(end); {
		slotEnd := current.Add(step)
		if slotEnd.After(end) {
			slotEnd = end
		}
		if slotEnd.Sub(current) < minSlotLength {
			break
		}
		if !sameDay || !current.Before(cutoff) {
			slots = append(slots, Slot{
				Start: current,
				End:   slotEnd,
				Label: formatLabel(current, slotEnd),
			})
		}
		current = slotEnd
	}
	return slots, nil
}

func formatLabel(start, end time.Time) string {
	return start.Format("15:04") + " - " + end.Format("15:04")
}
