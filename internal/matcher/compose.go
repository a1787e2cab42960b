package matcher

import (
	"fmt"
	"strings"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// ComposeResolution appends the facility list to the disposition
// instructions. With no facilities in range it says so instead of sending an
// empty list.
func ComposeResolution(instructions string, facilities []domain.Facility, radiusKm float64) string {
	var b strings.Builder
	b.WriteString(instructions)
	if len(facilities) == 0 {
		fmt.Fprintf(&b, "\n\nNo care centers were found within %g km of your zip code. "+
			"If your symptoms get worse, call your local emergency number.", radiusKm)
		return b.String()
	}
	b.WriteString("\n\nPlease choose one of the following care centers:\n ")
	for _, f := range facilities {
		b.WriteString(f.Describe())
	}
	return b.String()
}
