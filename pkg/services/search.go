package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
	"github.com/naturewatch/aoi-engine/pkg/models"
	"github.com/naturewatch/aoi-engine/pkg/repositories"
	"github.com/naturewatch/aoi-engine/pkg/retry"
)

// CandidateSearcher queries every registered geometry source for approximate
// name matches and unions the results into one deterministically ordered
// candidate set.
type CandidateSearcher interface {
	Search(ctx context.Context, place string, principal string) ([]models.Candidate, error)
}

type candidateSearcher struct {
	repo     repositories.GeometryRepository
	sources  []models.SourceDescriptor
	limit    int
	floor    float64
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewCandidateSearcher creates a CandidateSearcher over the given sources.
// limit caps candidates per source, floor is the minimum trigram similarity.
func NewCandidateSearcher(
	repo repositories.GeometryRepository,
	sources []models.SourceDescriptor,
	limit int,
	floor float64,
	logger *zap.Logger,
) CandidateSearcher {
	return &candidateSearcher{
		repo:     repo,
		sources:  sources,
		limit:    limit,
		floor:    floor,
		retryCfg: retry.SourceQueryConfig(),
		logger:   logger.Named("candidate-searcher"),
	}
}

var _ CandidateSearcher = (*candidateSearcher)(nil)

func (s *candidateSearcher) Search(ctx context.Context, place string, principal string) ([]models.Candidate, error) {
	if len(s.sources) == 0 {
		s.logger.Warn("no geometry sources configured", zap.String("place", place))
		return nil, nil
	}

	// Sources that require a principal make the whole search fail without
	// one; silently skipping them would hide the user's own areas.
	for _, desc := range s.sources {
		if desc.RequiresPrincipal && principal == "" {
			return nil, fmt.Errorf("%w: source %s", apperrors.ErrAuthorizationRequired, desc.Source)
		}
	}

	var (
		mu         sync.Mutex
		candidates []models.Candidate
		fatal      error
	)

	// Per-source queries run concurrently; a failing source is degraded,
	// not fatal, so closures never return errors to the group.
	var g errgroup.Group
	for _, desc := range s.sources {
		desc := desc
		g.Go(func() error {
			found, err := retry.DoWithResult(ctx, s.retryCfg, func() ([]models.Candidate, error) {
				return s.repo.SearchCandidates(ctx, desc, place, principal, s.limit, s.floor)
			})
			if err != nil {
				if len(s.sources) == 1 {
					mu.Lock()
					fatal = fmt.Errorf("%w: %s: %v", apperrors.ErrSourceUnavailable, desc.Source, err)
					mu.Unlock()
					return nil
				}
				s.logger.Warn("geometry source degraded, dropping from search",
					zap.String("source", string(desc.Source)),
					zap.String("place", place),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			candidates = append(candidates, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if fatal != nil {
		return nil, fatal
	}

	sortCandidates(candidates)

	s.logger.Debug("candidate search complete",
		zap.String("place", place),
		zap.Int("count", len(candidates)))

	return candidates, nil
}

// sortCandidates imposes the engine's strict total order: similarity
// descending, then fixed source priority, then name, then identifier. The
// order never depends on which source query finished first.
func sortCandidates(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if pa, pb := models.PriorityOf(a.Source), models.PriorityOf(b.Source); pa != pb {
			return pa < pb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.SrcID < b.SrcID
	})
}
