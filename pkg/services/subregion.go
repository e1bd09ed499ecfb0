package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
	"github.com/naturewatch/aoi-engine/pkg/models"
	"github.com/naturewatch/aoi-engine/pkg/repositories"
)

// subregionTarget is one entry of the closed concept mapping: a requested
// subregion concept resolves to a concrete source and subtype.
type subregionTarget struct {
	Source  models.GeometrySource
	Subtype string
}

var subregionTargets = map[string]subregionTarget{
	"country":       {models.SourceGADM, "country"},
	"state":         {models.SourceGADM, "state-province"},
	"district":      {models.SourceGADM, "district-county"},
	"municipality":  {models.SourceGADM, "municipality"},
	"locality":      {models.SourceGADM, "locality"},
	"neighbourhood": {models.SourceGADM, "neighbourhood"},
	"kba":           {models.SourceKBA, "key-biodiversity-area"},
	"wdpa":          {models.SourceWDPA, "protected-area"},
	"landmark":      {models.SourceLandmark, "indigenous-and-community-land"},
}

// SubregionConcepts returns the accepted subregion concept names.
func SubregionConcepts() []string {
	concepts := make([]string, 0, len(subregionTargets))
	for c := range subregionTargets {
		concepts = append(concepts, c)
	}
	return concepts
}

// resolveSubregionTarget maps a concept to its target source and subtype.
func resolveSubregionTarget(concept string) (subregionTarget, error) {
	target, ok := subregionTargets[concept]
	if !ok {
		return subregionTarget{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedSubregion, concept)
	}
	return target, nil
}

// SubregionExpander finds every record of a target subregion type strictly
// contained within an already-resolved AOI.
type SubregionExpander interface {
	Expand(ctx context.Context, selection models.Selection, concept string) ([]models.AOI, error)
}

type subregionExpander struct {
	repo   repositories.GeometryRepository
	logger *zap.Logger
}

// NewSubregionExpander creates a SubregionExpander.
func NewSubregionExpander(repo repositories.GeometryRepository, logger *zap.Logger) SubregionExpander {
	return &subregionExpander{
		repo:   repo,
		logger: logger.Named("subregion-expander"),
	}
}

var _ SubregionExpander = (*subregionExpander)(nil)

func (e *subregionExpander) Expand(ctx context.Context, selection models.Selection, concept string) ([]models.AOI, error) {
	target, err := resolveSubregionTarget(concept)
	if err != nil {
		return nil, err
	}

	targetDesc, ok := models.DescriptorFor(target.Source)
	if !ok {
		return nil, fmt.Errorf("no descriptor for subregion source %s", target.Source)
	}

	containingDesc, ok := models.DescriptorFor(selection.Source)
	if !ok {
		return nil, fmt.Errorf("no descriptor for containing source %s", selection.Source)
	}

	// The identifier is validated against the source's declared kind before
	// it ever reaches the containment query.
	containingID, err := containingDesc.CoerceID(selection.SrcID)
	if err != nil {
		return nil, err
	}

	aois, err := e.repo.SubregionsWithin(ctx, containingDesc, containingID, targetDesc, target.Subtype)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q within %s: %w", concept, selection.Name, err)
	}

	e.logger.Info("subregion expansion complete",
		zap.String("containing", selection.Name),
		zap.String("concept", concept),
		zap.Int("count", len(aois)))

	return aois, nil
}
