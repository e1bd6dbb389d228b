package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Delivery: ModeHours{
			Weekday: DayHours{Open: MustClock("09:00"), Close: MustClock("21:00")},
			Weekend: DayHours{Open: MustClock("10:00"), Close: MustClock("22:00")},
		},
		Pickup: ModeHours{
			Weekday: DayHours{Open: MustClock("09:00"), Close: MustClock("21:00")},
			Weekend: DayHours{Open: MustClock("10:00"), Close: MustClock("22:00")},
		},
		StepMinutes:        120,
		ProcessingMinutes:  50,
		CloseCutoffMinutes: 20,
		Timezone:           "Europe/Moscow",
	}
}

func shopTime(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func labels(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Label
	}
	return out
}

func TestGenerate_TodayFiltersByProcessingBuffer(t *testing.T) {
	cfg := testConfig()
	// Wednesday 10:05: cutoff is 10:55, so the 09:00 window is gone but
	// the 11:00 window survives.
	now := shopTime(t, "2024-06-05 10:05")

	slots, err := Generate("2024-06-05", ModeDelivery, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"11:00 - 13:00",
		"13:00 - 15:00",
		"15:00 - 17:00",
		"17:00 - 19:00",
		"19:00 - 21:00",
	}, labels(slots))
}

func TestGenerate_FutureDateIncludesAllWindows(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 10:05")

	slots, err := Generate("2024-06-07", ModeDelivery, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"09:00 - 11:00",
		"11:00 - 13:00",
		"13:00 - 15:00",
		"15:00 - 17:00",
		"17:00 - 19:00",
		"19:00 - 21:00",
	}, labels(slots))
}

func TestGenerate_WeekendHoursSelected(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 10:05")

	// 2024-06-08 is a Saturday: 10:00-22:00 yields six 2h windows.
	slots, err := Generate("2024-06-08", ModePickup, cfg, now)
	require.NoError(t, err)

	require.Len(t, slots, 6)
	assert.Equal(t, "10:00 - 12:00", slots[0].Label)
	assert.Equal(t, "20:00 - 22:00", slots[5].Label)
}

func TestGenerate_PastDateIsEmpty(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 10:05")

	for _, mode := range []Mode{ModeDelivery, ModePickup} {
		slots, err := Generate("2024-06-04", mode, cfg, now)
		require.NoError(t, err)
		assert.Empty(t, slots)
	}
}

func TestGenerate_MalformedDate(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 10:05")

	_, err := Generate("05.06.2024", ModeDelivery, cfg, now)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestGenerate_ShortTailDiscarded(t *testing.T) {
	cfg := testConfig()
	// 09:00-21:00 with a 50 minute step: the final remainder before 21:00
	// is 20 minutes, below the 30 minute floor, so it is not offered.
	cfg.StepMinutes = 50
	now := shopTime(t, "2024-06-05 08:00")

	slots, err := Generate("2024-06-07", ModeDelivery, cfg, now)
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	last := slots[len(slots)-1]
	assert.Equal(t, "19:50 - 20:40", last.Label)
}

func TestGenerate_ShortTailKeptWhenAtLeast30Minutes(t *testing.T) {
	cfg := testConfig()
	// 09:00-21:00 with a 210 minute step leaves a 90 minute tail.
	cfg.StepMinutes = 210
	now := shopTime(t, "2024-06-05 08:00")

	slots, err := Generate("2024-06-07", ModeDelivery, cfg, now)
	require.NoError(t, err)

	require.Len(t, slots, 4)
	assert.Equal(t, "19:30 - 21:00", slots[3].Label)
	assert.Equal(t, 90*time.Minute, slots[3].End.Sub(slots[3].Start))
}

func TestGenerate_OvernightHoursCrossMidnight(t *testing.T) {
	cfg := testConfig()
	cfg.Delivery.Weekday = DayHours{Open: MustClock("22:00"), Close: MustClock("02:00")}
	now := shopTime(t, "2024-06-05 08:00")

	slots, err := Generate("2024-06-07", ModeDelivery, cfg, now)
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, "22:00 - 00:00", slots[0].Label)
	assert.Equal(t, "00:00 - 02:00", slots[1].Label)
	// The second window belongs to the next calendar day.
	assert.Equal(t, 8, slots[1].Start.Day())
}

func TestGenerate_ContiguousNonOverlapping(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 08:00")

	slots, err := Generate("2024-06-10", ModeDelivery, cfg, now)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	step := time.Duration(cfg.StepMinutes) * time.Minute
	for i, s := range slots {
		assert.True(t, s.End.After(s.Start))
		if i > 0 {
			assert.True(t, s.Start.Equal(slots[i-1].End), "slot %d not contiguous", i)
		}
		if i < len(slots)-1 {
			assert.Equal(t, step, s.End.Sub(s.Start), "slot %d has wrong length", i)
		}
	}
}

func TestGenerate_TodaySlotsRespectCutoff(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 12:30")
	cutoff := now.Add(time.Duration(cfg.ProcessingMinutes) * time.Minute)

	slots, err := Generate("2024-06-05", ModeDelivery, cfg, now)
	require.NoError(t, err)

	for _, s := range slots {
		assert.False(t, s.Start.Before(cutoff), "slot %s starts before cutoff", s.Label)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := testConfig()
	now := shopTime(t, "2024-06-05 10:05")

	first, err := Generate("2024-06-05", ModeDelivery, cfg, now)
	require.NoError(t, err)
	second, err := Generate("2024-06-05", ModeDelivery, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
