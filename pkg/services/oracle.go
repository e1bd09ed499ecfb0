package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
	"github.com/naturewatch/aoi-engine/pkg/llm"
	"github.com/naturewatch/aoi-engine/pkg/models"
)

// SelectionOracle picks the one candidate that best matches the user's
// question. The model call is treated as pure; its answer is only trusted
// after validation against the candidate set it was shown.
type SelectionOracle interface {
	Select(ctx context.Context, question string, candidates []models.Candidate) (models.Selection, error)
}

const selectionSystemMessage = `You select the one geographic area that best matches the intent of a user's question.
Consider the context and purpose mentioned in the question to determine the most appropriate geographic scope.
When there is a tie, give preference to country > state > district > municipality > locality.
Respond with a single JSON object with the keys "source", "src_id", "name" and "subtype", copied exactly from the chosen row. Return ONLY JSON.`

const selectionPromptTemplate = `Candidate locations (CSV):
%s
User question:
%s`

type llmOracle struct {
	client      llm.Client
	temperature float64
	logger      *zap.Logger
}

// NewSelectionOracle creates a SelectionOracle backed by the given model
// client.
func NewSelectionOracle(client llm.Client, temperature float64, logger *zap.Logger) SelectionOracle {
	return &llmOracle{
		client:      client,
		temperature: temperature,
		logger:      logger.Named("selection-oracle"),
	}
}

var _ SelectionOracle = (*llmOracle)(nil)

// oracleSelection is the JSON shape the model must answer with.
type oracleSelection struct {
	Source  string `json:"source"`
	SrcID   string `json:"src_id"`
	Name    string `json:"name"`
	Subtype string `json:"subtype"`
}

func (o *llmOracle) Select(ctx context.Context, question string, candidates []models.Candidate) (models.Selection, error) {
	prompt := fmt.Sprintf(selectionPromptTemplate, renderCandidateTable(candidates), question)

	response, err := o.client.Complete(ctx, prompt, selectionSystemMessage, o.temperature)
	if err != nil {
		return models.Selection{}, fmt.Errorf("oracle call failed: %w", err)
	}

	parsed, err := llm.ParseJSONResponse[oracleSelection](response)
	if err != nil {
		return models.Selection{}, fmt.Errorf("oracle returned unparseable selection: %w", err)
	}

	// The model's echo of name and subtype is discarded; the validated
	// candidate row is authoritative.
	chosen, ok := findCandidate(candidates, models.GeometrySource(parsed.Source), parsed.SrcID)
	if !ok {
		return models.Selection{}, fmt.Errorf("%w: %s/%s", apperrors.ErrInvalidSelection, parsed.Source, parsed.SrcID)
	}

	resolved := resolveSpecificityTie(chosen, candidates)
	if resolved.SrcID != chosen.SrcID {
		o.logger.Debug("specificity tie-break overrode oracle pick",
			zap.String("oracle_pick", chosen.SrcID),
			zap.String("resolved", resolved.SrcID))
	}

	o.logger.Info("oracle selected AOI",
		zap.String("source", string(resolved.Source)),
		zap.String("src_id", resolved.SrcID),
		zap.String("name", resolved.Name))

	return resolved, nil
}

// renderCandidateTable renders the ranked candidate set as compact CSV, the
// shape the oracle contract expects.
func renderCandidateTable(candidates []models.Candidate) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"src_id", "name", "subtype", "source", "similarity_score"})
	for _, c := range candidates {
		_ = w.Write([]string{
			c.SrcID,
			c.Name,
			c.Subtype,
			string(c.Source),
			strconv.FormatFloat(c.Similarity, 'f', 3, 64),
		})
	}
	w.Flush()
	return sb.String()
}

func findCandidate(candidates []models.Candidate, source models.GeometrySource, srcID string) (models.Candidate, bool) {
	for _, c := range candidates {
		if c.Source == source && c.SrcID == srcID {
			return c, true
		}
	}
	return models.Candidate{}, false
}

// adminLevelRank orders administrative subtypes from least to most specific.
var adminLevelRank = map[string]int{
	"country":        0,
	"state-province": 1,
	"district-county": 2,
	"municipality":   3,
	"locality":       4,
	"neighbourhood":  5,
}

// resolveSpecificityTie applies the administrative specificity preference
// (country before state before district, and so on) deterministically when
// the oracle's pick is one of several admin-hierarchy candidates tied at the
// same similarity score. Leaving the tie to the model's prose instruction
// alone would make resolution non-reproducible.
func resolveSpecificityTie(chosen models.Candidate, candidates []models.Candidate) models.Candidate {
	if chosen.Source != models.SourceGADM {
		return chosen
	}

	best := chosen
	bestRank, ok := adminLevelRank[chosen.Subtype]
	if !ok {
		return chosen
	}

	for _, c := range candidates {
		if c.Source != models.SourceGADM || c.Similarity != chosen.Similarity {
			continue
		}
		if rank, ok := adminLevelRank[c.Subtype]; ok && rank < bestRank {
			best = c
			bestRank = rank
		}
	}
	return best
}
