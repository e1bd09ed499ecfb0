package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/naturewatch/aoi-engine/pkg/models"
)

// ResolveRequest is one resolution call: a user question for context, one or
// more place names (already language-normalized upstream), an optional
// subregion concept and the requesting principal, required only when the
// custom-area source is registered.
type ResolveRequest struct {
	Question  string   `json:"question"`
	Places    []string `json:"places"`
	Subregion string   `json:"subregion,omitempty"`
	Principal string   `json:"-"`
}

// Resolver is the engine's caller-facing operation. The returned Resolution
// carries either a completed AOISelection or a ClarificationRequest with
// concrete next steps; both are normal conversational outcomes. Errors are
// reserved for the fatal taxonomy.
type Resolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (*models.Resolution, error)
}

type resolver struct {
	searcher CandidateSearcher
	oracle   SelectionOracle
	expander SubregionExpander
	logger   *zap.Logger
}

// NewResolver creates the Resolver from its pipeline stages.
func NewResolver(
	searcher CandidateSearcher,
	oracle SelectionOracle,
	expander SubregionExpander,
	logger *zap.Logger,
) Resolver {
	return &resolver{
		searcher: searcher,
		oracle:   oracle,
		expander: expander,
		logger:   logger.Named("aoi-resolver"),
	}
}

var _ Resolver = (*resolver)(nil)

// placeResult is the joined outcome of one place's pipeline. Exactly one of
// clarification or (selection, aois) is meaningful when err is nil.
type placeResult struct {
	selection     models.Selection
	aois          []models.AOI
	clarification *models.ClarificationRequest
	err           error
}

func (r *resolver) Resolve(ctx context.Context, req ResolveRequest) (*models.Resolution, error) {
	if len(req.Places) == 0 {
		return nil, fmt.Errorf("at least one place is required")
	}
	// Reject an unmapped subregion concept before spawning any pipeline.
	if req.Subregion != "" {
		if _, err := resolveSubregionTarget(req.Subregion); err != nil {
			return nil, err
		}
	}

	// One independently scheduled pipeline per place, joined before the
	// guardrails run over the combined result. A failure in one place's
	// pipeline never aborts its siblings.
	results := make([]placeResult, len(req.Places))
	var wg sync.WaitGroup
	for i, place := range req.Places {
		wg.Add(1)
		go func(i int, place string) {
			defer wg.Done()
			results[i] = r.resolvePlace(ctx, req, place)
		}(i, place)
	}
	wg.Wait()

	// Fatal errors surface first, then clarifications, both in input
	// order so a batch resolves deterministically.
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("resolving %q: %w", req.Places[i], res.err)
		}
	}
	for _, res := range results {
		if res.clarification != nil {
			return &models.Resolution{Clarification: res.clarification}, nil
		}
	}

	var combined []models.AOI
	for _, res := range results {
		combined = append(combined, res.aois...)
	}
	if clar := enforceGuardrails(combined); clar != nil {
		return &models.Resolution{Clarification: clar}, nil
	}

	selection := assembleSelection(results, req.Subregion)
	for _, line := range selection.Transcript {
		r.logger.Info(line)
	}
	if req.Subregion != "" {
		r.logger.Info("expanded subregions",
			zap.String("subregion", req.Subregion),
			zap.String("areas", previewNames(selection.AOIs)))
	}

	return &models.Resolution{Selection: selection}, nil
}

// resolvePlace runs one place through search, oracle selection, homonym
// detection and optional subregion expansion.
func (r *resolver) resolvePlace(ctx context.Context, req ResolveRequest, place string) placeResult {
	candidates, err := r.searcher.Search(ctx, place, req.Principal)
	if err != nil {
		return placeResult{err: err}
	}
	if len(candidates) == 0 {
		return placeResult{clarification: &models.ClarificationRequest{
			Kind: models.ClarificationNoMatch,
			Message: fmt.Sprintf(
				"I couldn't find any area matching '%s'. Please check the spelling, or try the official name of the place.",
				place),
		}}
	}

	selection, err := r.oracle.Select(ctx, req.Question, candidates)
	if err != nil {
		return placeResult{err: err}
	}

	if clar := detectCrossRegionHomonyms(selection, candidates); clar != nil {
		return placeResult{clarification: clar}
	}

	if req.Subregion != "" {
		subAOIs, err := r.expander.Expand(ctx, selection, req.Subregion)
		if err != nil {
			return placeResult{err: err}
		}
		return placeResult{selection: selection, aois: subAOIs}
	}

	return placeResult{
		selection: selection,
		aois: []models.AOI{{
			Source:  selection.Source,
			SrcID:   selection.SrcID,
			Name:    selection.Name,
			Subtype: selection.Subtype,
		}},
	}
}
