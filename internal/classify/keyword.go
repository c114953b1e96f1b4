// Package classify bundles a deterministic implementation of the optional
// scenic-classifier / exit-scorer collaborator. An external model can be
// substituted behind the same service-level interfaces; this keyword matcher
// is the implementation the server ships with, so ranking works out of the
// box without any network dependency.
package classify

import (
	"context"
	"strings"
)

// scenicTerms are matched case-insensitively against a trail's name and
// description. One hit is enough to classify the trail as scenic.
var scenicTerms = []string{
	"scenic", "vista", "panorama", "panoramic", "overlook", "viewpoint",
	"ridge", "summit", "falls", "waterfall", "lake", "coastal", "meadow",
}

// Keyword classifies and scores from text alone. The zero value is ready to use.
type Keyword struct{}

// Classify reports whether the trail reads as scenic based on its name and
// description.
func (Keyword) Classify(ctx context.Context, name, description string) (bool, error) {
	text := strings.ToLower(name + " " + description)
	for _, term := range scenicTerms {
		if strings.Contains(text, term) {
			return true, nil
		}
	}
	return false, nil
}

// Score rates an exit point description in [0, 1]: the fraction of scenic
// terms present, so richer descriptions rank higher. Deterministic, so equal
// descriptions always tie and the eta tie-break below them stays stable.
func (Keyword) Score(ctx context.Context, description string) (float64, error) {
	if description == "" {
		return 0, nil
	}
	text := strings.ToLower(description)
	hits := 0
	for _, term := range scenicTerms {
		if strings.Contains(text, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(scenicTerms)), nil
}
