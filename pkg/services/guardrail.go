package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/naturewatch/aoi-engine/pkg/models"
)

const tooManyResultsRemediation = `Please narrow down your search by either:
1. Being more specific with the area selection (choose a smaller area)
2. Being more specific with the requested subregion type
For optimal performance, please limit results to under 25 areas for KBA, protected areas and indigenous lands, or under 50 for other area types.`

// enforceGuardrails checks the combined AOI list of a whole batch after all
// per-place selection and expansion steps. It returns a guidance outcome,
// never a partial or truncated list: either the full result passes or the
// caller gets concrete next steps.
func enforceGuardrails(aois []models.AOI) *models.ClarificationRequest {
	if len(aois) == 0 {
		return nil
	}

	distinct := map[models.GeometrySource]struct{}{}
	for _, a := range aois {
		distinct[a.Source] = struct{}{}
	}
	if len(distinct) > 1 {
		names := make([]string, 0, len(distinct))
		for s := range distinct {
			names = append(names, string(s))
		}
		sort.Strings(names)
		return &models.ClarificationRequest{
			Kind: models.ClarificationMixedSource,
			Message: fmt.Sprintf(
				"The resolved areas come from multiple geometry sources (%s), which cannot be analyzed together. Please rephrase so every area comes from a single source, for example by picking one dataset to work with.",
				strings.Join(names, ", ")),
		}
	}

	// Cardinality is only checked here, after subregion expansion: raw
	// search is already capped per source, expansion is what explodes.
	source := aois[0].Source
	limit := 50
	if d, ok := models.DescriptorFor(source); ok {
		limit = d.ResultCap
	}
	if len(aois) > limit {
		return &models.ClarificationRequest{
			Kind: models.ClarificationTooManyResults,
			Message: fmt.Sprintf(
				"Found %d areas, which is too many to process efficiently. %s",
				len(aois), tooManyResultsRemediation),
		}
	}

	return nil
}
