package domain

import "fmt"

// Criteria is the caller-selected policy that alters route and alternative
// selection. It is a closed set — ParseCriteria rejects anything else, so
// the rest of the codebase can switch on it exhaustively.
type Criteria string

const (
	// CriteriaDefault picks the candidate trail with the greatest estimated
	// duration that still fits the hiking budget.
	CriteriaDefault Criteria = "default"

	// CriteriaFaster models express transit service: it raises the transit
	// speed constant, leaving trail selection identical to default.
	CriteriaFaster Criteria = "faster"

	// CriteriaShorter picks the candidate trail with the smallest estimated
	// duration.
	CriteriaShorter Criteria = "shorter"

	// CriteriaScenic prefers trails a configured classifier marks scenic,
	// falling back to the default rule when no classifier is configured or
	// nothing classifies as scenic.
	CriteriaScenic Criteria = "scenic"
)

// ParseCriteria validates a raw criteria string. An empty string means
// default. Unknown values wrap ErrValidation.
func ParseCriteria(raw string) (Criteria, error) {
	switch Criteria(raw) {
	case "":
		return CriteriaDefault, nil
	case CriteriaDefault, CriteriaFaster, CriteriaShorter, CriteriaScenic:
		return Criteria(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown criteria %q", ErrValidation, raw)
	}
}
