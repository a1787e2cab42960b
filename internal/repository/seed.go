package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedFacilities copies the YAML seed file into the zip_codes and facilities
// tables when the facilities table is empty. It returns the number of
// facilities inserted (0 when the table already had rows).
func SeedFacilities(ctx context.Context, pool *pgxpool.Pool, path string) (int, error) {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM facilities`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count facilities: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	zips, facilities, err := readFacilitiesFile(path)
	if err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	zipRows := make([][]any, 0, len(zips))
	for zip, p := range zips {
		zipRows = append(zipRows, []any{zip, p.Lat, p.Lon})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"zip_codes"},
		[]string{"zip", "lat", "lon"}, pgx.CopyFromRows(zipRows)); err != nil {
		return 0, fmt.Errorf("copy zip codes: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"facilities"},
		[]string{"id", "name", "address", "city", "state", "zip", "kind", "lat", "lon"},
		pgx.CopyFromSlice(len(facilities), func(i int) ([]any, error) {
			f := facilities[i]
			return []any{f.ID, f.Name, f.Address, f.City, f.State, f.Zip, string(f.Kind), f.Lat, f.Lon}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy facilities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return int(n), nil
}
