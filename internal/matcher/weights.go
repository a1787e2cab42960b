package matcher

import "github.com/GodofWar9000/tele-triage/internal/domain"

// distanceScaleKm is the distance at which a facility's weight halves.
const distanceScaleKm = 10.0

// affinity scores how well a facility kind fits a disposition, in [0, 1].
var affinity = map[string]map[domain.FacilityKind]float64{
	"LEVEL 1": {domain.KindHospital: 1.0, domain.KindUrgentCare: 0.2},
	"LEVEL 2": {domain.KindHospital: 1.0, domain.KindUrgentCare: 0.4, domain.KindClinic: 0.1},
	"LEVEL 3": {domain.KindHospital: 0.6, domain.KindUrgentCare: 1.0, domain.KindClinic: 0.6},
	"LEVEL 4": {domain.KindHospital: 0.3, domain.KindUrgentCare: 0.8, domain.KindClinic: 1.0},
	"gettest": {domain.KindTesting: 1.0, domain.KindClinic: 0.5, domain.KindUrgentCare: 0.3, domain.KindHospital: 0.2},
}

// defaultAffinity applies to codes without an entry in the table.
const defaultAffinity = 0.5

// Weights scores each candidate for code. The weight is the kind affinity
// scaled by an inverse-distance factor; zero means "never pick".
func Weights(candidates []domain.Facility, code string) []float64 {
	table, known := affinity[code]
	weights := make([]float64, len(candidates))
	for i, f := range candidates {
		a := defaultAffinity
		if known {
			a = table[f.Kind]
		}
		weights[i] = a / (1 + f.DistanceKm/distanceScaleKm)
	}
	return weights
}
