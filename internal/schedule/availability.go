package schedule

import "time"

// Availability reports whether "as soon as possible" service is currently
// orderable, with a human-readable reason when it is not.
type Availability struct {
	Open   bool
	Reason string
}

// CheckOpen decides whether an ASAP order can be taken right now for the
// given mode. now must already be localized to the shop timezone.
//
// The check uses a close-side cutoff (CloseCutoffMinutes before closing),
// which is independent of the open-side processing buffer used for slot
// filtering. The two thresholds must not be conflated.
func CheckOpen(mode Mode, cfg *Config, now time.Time) Availability {
	hours := ResolveHours(now, mode, cfg)
	start := hours.Open.At(now)
	end := hours.Close.At(now)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	cutoff := end.Add(-time.Duration(cfg.CloseCutoffMinutes) * time.Minute)

	switch {
	case now.Before(start):
		return Availability{Reason: "opens at " + hours.Open.String()}
	case !now.Before(cutoff):
		return Availability{Reason: "closing soon"}
	default:
		return Availability{Open: true}
	}
}
