package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// PgFacilityRepository searches the facilities table using zip centroids
// from the zip_codes table. Distances are computed in SQL with the haversine
// formula using the same earth radius as haversineKm.
type PgFacilityRepository struct {
	pool *pgxpool.Pool
}

func NewPgFacilityRepository(pool *pgxpool.Pool) *PgFacilityRepository {
	return &PgFacilityRepository{pool: pool}
}

// FindWithin returns facilities within radiusKm of zip, nearest first.
// Database errors are transient: the worker retries the lookup.
func (r *PgFacilityRepository) FindWithin(ctx context.Context, zip string, radiusKm float64) ([]domain.Facility, error) {
	var origin Point
	err := r.pool.QueryRow(ctx,
		`SELECT lat, lon FROM zip_codes WHERE zip = $1`, zip).Scan(&origin.Lat, &origin.Lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Transient(fmt.Errorf("zip %q: %w", zip, domain.ErrUnknownLocation))
	}
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("lookup zip centroid: %w", err))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, city, state, zip, kind, lat, lon, distance_km
		FROM (
			SELECT f.*,
			       2 * 6371.0 * ASIN(SQRT(
			           POWER(SIN(RADIANS(f.lat - $1) / 2), 2) +
			           COS(RADIANS($1)) * COS(RADIANS(f.lat)) *
			           POWER(SIN(RADIANS(f.lon - $2) / 2), 2)
			       )) AS distance_km
			FROM facilities f
		) d
		WHERE distance_km <= $3
		ORDER BY distance_km ASC`,
		origin.Lat, origin.Lon, radiusKm)
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("search facilities: %w", err))
	}
	defer rows.Close()

	var result []domain.Facility
	for rows.Next() {
		var f domain.Facility
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Address, &f.City, &f.State, &f.Zip,
			&f.Kind, &f.Lat, &f.Lon, &f.DistanceKm,
		); err != nil {
			return nil, domain.Transient(fmt.Errorf("scan facility: %w", err))
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Transient(fmt.Errorf("search facilities: %w", err))
	}
	return result, nil
}
