package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/pkg/database"
	"hybrid-energy-platform/pkg/logging"
)

// FacilityRepository stores facility inventories and typical-day weather
type FacilityRepository interface {
	// SaveSurvey upserts the facility and replaces its inventory and weather in one
	// transaction. A nil weather clears any stored profile.
	SaveSurvey(ctx context.Context, facility *models.Facility, items []models.Equipment, weather *models.WeatherSeries) error
	GetFacility(ctx context.Context, facilityID string) (*models.Facility, error)

	ListEquipment(ctx context.Context, facilityID string) ([]models.Equipment, error)

	// GetWeatherProfile returns a NotFoundError when the facility has no stored profile
	GetWeatherProfile(ctx context.Context, facilityID string) (*models.WeatherSeries, error)

	HealthCheck(ctx context.Context) error
}

type facilityRepository struct {
	db     *database.PostgresDB
	logger *logging.StructuredLogger
}

// NewFacilityRepository creates a Postgres-backed facility repository
func NewFacilityRepository(db *database.PostgresDB, logger *logging.StructuredLogger) FacilityRepository {
	return &facilityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *facilityRepository) SaveSurvey(ctx context.Context, facility *models.Facility, items []models.Equipment, weather *models.WeatherSeries) error {
	start := time.Now()

	now := start.UTC()
	if facility.CreatedAt.IsZero() {
		facility.CreatedAt = now
	}
	facility.UpdatedAt = now

	err := r.db.InTx(ctx, "save_survey", func(tx *sqlx.Tx) error {
		if err := upsertFacility(ctx, tx, facility); err != nil {
			return err
		}
		if err := replaceEquipment(ctx, tx, facility.ID, items); err != nil {
			return err
		}
		return replaceWeather(ctx, tx, facility.ID, weather)
	})
	if err != nil {
		return err
	}

	r.logger.Info(ctx, "[REPO_SAVE_SURVEY] Facility survey saved", logging.Fields{
		"facility_id":   facility.ID,
		"facility_type": facility.FacilityType,
		"equipment":     len(items),
		"has_weather":   weather != nil,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return nil
}

func upsertFacility(ctx context.Context, tx *sqlx.Tx, facility *models.Facility) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO facilities (facility_id, name, facility_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (facility_id) DO UPDATE SET
			name = EXCLUDED.name,
			facility_type = EXCLUDED.facility_type,
			updated_at = EXCLUDED.updated_at
	`,
		facility.ID,
		facility.Name,
		facility.FacilityType,
		facility.CreatedAt,
		facility.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert facility: %w", err)
	}
	return nil
}

// replaceEquipment swaps the whole inventory, keeping list order in the position column
func replaceEquipment(ctx context.Context, tx *sqlx.Tx, facilityID string, items []models.Equipment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM facility_equipment WHERE facility_id = $1`, facilityID); err != nil {
		return fmt.Errorf("failed to clear equipment: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO facility_equipment (
			facility_id, position, equipment_id, name, category,
			power_rating_w, hours_per_day, efficiency, priority, quantity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range items {
		_, err := stmt.ExecContext(ctx,
			facilityID, i, e.ID, e.Name, e.Category,
			e.PowerRatingW, e.HoursPerDay, e.Efficiency, e.Priority, e.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert equipment %d: %w", i, err)
		}
	}
	return nil
}

func replaceWeather(ctx context.Context, tx *sqlx.Tx, facilityID string, weather *models.WeatherSeries) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM facility_weather WHERE facility_id = $1`, facilityID); err != nil {
		return fmt.Errorf("failed to clear weather profile: %w", err)
	}
	if weather == nil {
		return nil
	}

	for _, h := range weather.Hours() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO facility_weather (
				facility_id, hour, temperature_c, irradiance_wm2, wind_speed_ms, humidity_pct
			)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, facilityID, h.Hour, h.TemperatureC, h.IrradianceWm2, h.WindSpeedMs, h.HumidityPct)
		if err != nil {
			return fmt.Errorf("failed to insert weather hour %d: %w", h.Hour, err)
		}
	}
	return nil
}

func (r *facilityRepository) GetFacility(ctx context.Context, facilityID string) (*models.Facility, error) {
	query := `
		SELECT facility_id, name, facility_type, created_at, updated_at
		FROM facilities
		WHERE facility_id = $1
	`

	var facility models.Facility
	err := r.db.GetContext(ctx, "get_facility", &facility, query, facilityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "facility", ID: facilityID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	return &facility, nil
}

func (r *facilityRepository) ListEquipment(ctx context.Context, facilityID string) ([]models.Equipment, error) {
	query := `
		SELECT equipment_id, name, category, power_rating_w, hours_per_day,
			efficiency, priority, quantity
		FROM facility_equipment
		WHERE facility_id = $1
		ORDER BY position
	`

	items := []models.Equipment{}
	if err := r.db.SelectContext(ctx, "list_equipment", &items, query, facilityID); err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}

func (r *facilityRepository) GetWeatherProfile(ctx context.Context, facilityID string) (*models.WeatherSeries, error) {
	query := `
		SELECT hour, temperature_c, irradiance_wm2, wind_speed_ms, humidity_pct
		FROM facility_weather
		WHERE facility_id = $1
		ORDER BY hour
	`

	var hours []models.WeatherHour
	if err := r.db.SelectContext(ctx, "get_weather_profile", &hours, query, facilityID); err != nil {
		return nil, fmt.Errorf("failed to get weather profile: %w", err)
	}
	if len(hours) == 0 {
		return nil, &NotFoundError{Resource: "weather_profile", ID: facilityID}
	}

	weather, err := models.WeatherFromHours(hours)
	if err != nil {
		return nil, fmt.Errorf("stored weather profile for %s is unusable: %w", facilityID, err)
	}
	return weather, nil
}

func (r *facilityRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
