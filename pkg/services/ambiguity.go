package services

import (
	"fmt"
	"strings"

	"github.com/naturewatch/aoi-engine/pkg/models"
)

// detectCrossRegionHomonyms checks an admin-hierarchy selection against the
// original, unfiltered candidate set for places in other countries sharing
// its short name ("Georgia" the country vs "Georgia" the US state). Returns
// a clarification when resolution would otherwise be silently wrong, nil
// when the selection is unambiguous or not from the admin hierarchy.
func detectCrossRegionHomonyms(selection models.Selection, candidates []models.Candidate) *models.ClarificationRequest {
	if selection.Source != models.SourceGADM {
		return nil
	}

	display := shortPlaceName(selection.Name)
	shortName := strings.ToLower(display)
	region := regionCode(selection.SrcID)

	foreign := false
	var sameName []models.Candidate
	for _, c := range candidates {
		if c.Source != models.SourceGADM {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(c.Name), shortName) {
			continue
		}
		sameName = append(sameName, c)
		if regionCode(c.SrcID) != region {
			foreign = true
		}
	}
	if !foreign {
		return nil
	}

	lines := make([]string, 0, len(sameName))
	for _, c := range sameName {
		lines = append(lines, fmt.Sprintf("%s - (%s) [%s]", c.Name, c.Subtype, regionCode(c.SrcID)))
	}

	message := fmt.Sprintf(
		"I found multiple locations named '%s' in different countries. Please tell me which one you meant:\n\n%s\n\nWhich location are you looking for?",
		display, strings.Join(lines, "\n"))

	return &models.ClarificationRequest{
		Kind:       models.ClarificationAmbiguousPlace,
		Message:    message,
		Candidates: sameName,
	}
}

// shortPlaceName returns the leading comma-separated token of a display
// name: "Lisbon, Portugal" -> "Lisbon".
func shortPlaceName(name string) string {
	short, _, _ := strings.Cut(name, ",")
	return strings.TrimSpace(short)
}

// regionCode returns the top-level administrative code of a hierarchical
// identifier: "PRT.11.2_1" -> "PRT". Identifiers without separators are
// their own region code ("GEO" the country).
func regionCode(srcID string) string {
	code, _, _ := strings.Cut(srcID, ".")
	return code
}
