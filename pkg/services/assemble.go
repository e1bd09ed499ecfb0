package services

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/naturewatch/aoi-engine/pkg/models"
)

// assembleSelection builds the final AOISelection from the joined per-place
// results. The first AOI of the first place in input order is the designated
// primary AOI.
func assembleSelection(results []placeResult, concept string) *models.AOISelection {
	names := make([]string, 0, len(results))
	var aois []models.AOI
	for _, r := range results {
		names = append(names, r.selection.Name)
		aois = append(aois, r.aois...)
	}

	displayName := strings.Join(names, ", ")
	if concept != "" {
		displayName = fmt.Sprintf("%s in %s", titleCase(inflection.Plural(concept)), displayName)
	}

	transcript := make([]string, 0, len(aois))
	for _, a := range aois {
		transcript = append(transcript, fmt.Sprintf(
			"Selected AOI: %s, type: %s, source: %s, src_id: %s",
			a.Name, a.Subtype, a.Source, a.SrcID))
	}

	return &models.AOISelection{
		Name:       displayName,
		AOIs:       aois,
		Transcript: transcript,
	}
}

// previewNames summarizes expanded subregion names for logs and chat
// surfaces: at most five short names, with a count of the remainder.
func previewNames(aois []models.AOI) string {
	const maxShown = 5
	shown := make([]string, 0, maxShown)
	for i, a := range aois {
		if i == maxShown {
			return fmt.Sprintf("%s... (%d more)", strings.Join(shown, ", "), len(aois)-maxShown)
		}
		shown = append(shown, shortPlaceName(a.Name))
	}
	return strings.Join(shown, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
