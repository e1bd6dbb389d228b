package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floravia/storefront/internal/schedule"
	"github.com/floravia/storefront/internal/settings"
)

const getSettingsSQL = `SELECT
		shop_name, pickup_address, contact_phone,
		delivery_cost, custom_image_price,
		timezone, step_minutes, processing_minutes, close_cutoff_minutes,
		delivery_weekday_open, delivery_weekday_close,
		delivery_weekend_open, delivery_weekend_close,
		pickup_weekday_open, pickup_weekday_close,
		pickup_weekend_open, pickup_weekend_close
	FROM shop_settings WHERE singleton`

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository loads the singleton shop settings row. Clock columns
// are stored as "HH:MM" text and parsed into typed values here, so a bad
// row fails loudly at load time rather than mid-request.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get fetches the settings snapshot. The row is seeded by the migrations, so
// absence is an infrastructure fault, not a business outcome.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	rows, err := r.pool.Query(ctx, getSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("loading shop settings: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSettings)
	if err != nil {
		return nil, fmt.Errorf("loading shop settings: %w", err)
	}
	return &s, nil
}

func scanSettings(row pgx.CollectableRow) (settings.Settings, error) {
	var (
		s     settings.Settings
		clock [8]string
	)
	err := row.Scan(
		&s.ShopName, &s.PickupAddress, &s.ContactPhone,
		&s.DeliveryCost, &s.CustomImagePrice,
		&s.Hours.Timezone, &s.Hours.StepMinutes, &s.Hours.ProcessingMinutes, &s.Hours.CloseCutoffMinutes,
		&clock[0], &clock[1], &clock[2], &clock[3],
		&clock[4], &clock[5], &clock[6], &clock[7],
	)
	if err != nil {
		return settings.Settings{}, err
	}

	pairs := []*schedule.DayHours{
		&s.Hours.Delivery.Weekday, &s.Hours.Delivery.Weekend,
		&s.Hours.Pickup.Weekday, &s.Hours.Pickup.Weekend,
	}
	for i, p := range pairs {
		open, err := schedule.ParseClock(clock[i*2])
		if err != nil {
			return settings.Settings{}, fmt.Errorf("parsing shop settings hours: %w", err)
		}
		closeAt, err := schedule.ParseClock(clock[i*2+1])
		if err != nil {
			return settings.Settings{}, fmt.Errorf("parsing shop settings hours: %w", err)
		}
		p.Open, p.Close = open, closeAt
	}
	return s, nil
}
