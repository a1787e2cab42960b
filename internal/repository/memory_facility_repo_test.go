package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/repository"
)

const seedYAML = `
zip_codes:
  - {zip: "62701", lat: 39.8017, lon: -89.6437}
facilities:
  - {id: near, name: Near General, address: 1 Main St, city: Springfield, state: IL, zip: "62701", kind: hospital, lat: 39.7990, lon: -89.6440}
  - {id: mid, name: Midway Clinic, address: 5 Elm St, city: Chatham, state: IL, zip: "62629", kind: clinic, lat: 39.6767, lon: -89.7043}
  - {id: far, name: Chicago Med, address: 9 Lake Dr, city: Chicago, state: IL, zip: "60601", kind: hospital, lat: 41.8858, lon: -87.6229}
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))
	return path
}

func TestMemoryFacilityRepository_FindWithin(t *testing.T) {
	repo, err := repository.LoadFacilitiesFile(writeSeed(t))
	require.NoError(t, err)

	got, err := repo.FindWithin(context.Background(), "62701", 40)
	require.NoError(t, err)
	require.Len(t, got, 2, "Chicago is ~300 km away and must be excluded")

	assert.Equal(t, "near", got[0].ID, "results are ordered nearest first")
	assert.Equal(t, "mid", got[1].ID)
	assert.Less(t, got[0].DistanceKm, 1.0)
	assert.InDelta(t, 14.8, got[1].DistanceKm, 1.0)
	assert.Equal(t, domain.KindClinic, got[1].Kind)
}

func TestMemoryFacilityRepository_UnknownZipIsTransient(t *testing.T) {
	repo, err := repository.LoadFacilitiesFile(writeSeed(t))
	require.NoError(t, err)

	_, err = repo.FindWithin(context.Background(), "99999", 40)
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.True(t, errors.Is(err, domain.ErrUnknownLocation))
}

func TestLoadFacilitiesFile_Errors(t *testing.T) {
	_, err := repository.LoadFacilitiesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("facilities: [oops"), 0o600))
	_, err = repository.LoadFacilitiesFile(bad)
	assert.ErrorContains(t, err, "parse facilities file")
}
