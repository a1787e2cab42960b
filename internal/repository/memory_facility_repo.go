package repository

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// MemoryFacilityRepository searches a fixed facility list held in memory.
// It is loaded from a YAML seed file when no database is configured.
type MemoryFacilityRepository struct {
	zips       map[string]Point
	facilities []domain.Facility
}

type facilitiesFile struct {
	ZipCodes []struct {
		Zip   string `yaml:"zip"`
		Point `yaml:",inline"`
	} `yaml:"zip_codes"`
	Facilities []domain.Facility `yaml:"facilities"`
}

func NewMemoryFacilityRepository(zips map[string]Point, facilities []domain.Facility) *MemoryFacilityRepository {
	return &MemoryFacilityRepository{zips: zips, facilities: facilities}
}

// LoadFacilitiesFile reads zip centroids and facilities from a YAML file:
//
//	zip_codes:
//	  - {zip: "62701", lat: 39.80, lon: -89.64}
//	facilities:
//	  - {id: f1, name: General, address: 1 Main St, city: Springfield,
//	     state: IL, zip: "62701", kind: hospital, lat: 39.79, lon: -89.65}
func LoadFacilitiesFile(path string) (*MemoryFacilityRepository, error) {
	zips, facilities, err := readFacilitiesFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryFacilityRepository(zips, facilities), nil
}

func readFacilitiesFile(path string) (map[string]Point, []domain.Facility, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read facilities file: %w", err)
	}
	var f facilitiesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse facilities file %s: %w", path, err)
	}
	zips := make(map[string]Point, len(f.ZipCodes))
	for _, z := range f.ZipCodes {
		zips[z.Zip] = z.Point
	}
	return zips, f.Facilities, nil
}

// FindWithin returns facilities within radiusKm of the zip centroid, nearest
// first. An unknown zip is a transient ErrUnknownLocation.
func (m *MemoryFacilityRepository) FindWithin(_ context.Context, zip string, radiusKm float64) ([]domain.Facility, error) {
	origin, ok := m.zips[zip]
	if !ok {
		return nil, domain.Transient(fmt.Errorf("zip %q: %w", zip, domain.ErrUnknownLocation))
	}

	var result []domain.Facility
	for _, f := range m.facilities {
		d := haversineKm(origin, Point{Lat: f.Lat, Lon: f.Lon})
		if d <= radiusKm {
			f.DistanceKm = d
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DistanceKm < result[j].DistanceKm })
	return result, nil
}
