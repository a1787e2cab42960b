package intake

import (
	"regexp"
	"strconv"
	"strings"
)

var zipPattern = regexp.MustCompile(`^(\d{5})(?:-\d{4})?$`)

// parseAnswer converts raw SMS text into the value stored for a question.
// ok is false when the input does not fit the question's kind.
func parseAnswer(kind Kind, input string) (value any, ok bool) {
	input = strings.TrimSpace(input)
	switch kind {
	case KindYesNo:
		switch strings.ToLower(input) {
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
		return nil, false
	case KindZip:
		m := zipPattern.FindStringSubmatch(input)
		if m == nil {
			return nil, false
		}
		return m[1], true
	case KindNumber:
		n, err := strconv.Atoi(input)
		if err != nil || n < 0 {
			return nil, false
		}
		return n, true
	default:
		if input == "" {
			return nil, false
		}
		return input, true
	}
}
