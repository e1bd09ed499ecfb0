package services

import (
	"context"
	"sync"

	"github.com/naturewatch/aoi-engine/pkg/models"
	"github.com/naturewatch/aoi-engine/pkg/repositories"
)

// mockGeometryRepository is a configurable repository double. Set the function
// fields to control responses; call counters allow interaction checks. The
// searcher fans out per source concurrently, so counters are mutex-guarded.
type mockGeometryRepository struct {
	SearchCandidatesFunc func(ctx context.Context, desc models.SourceDescriptor, place string, principal string, limit int, floor float64) ([]models.Candidate, error)
	SubregionsWithinFunc func(ctx context.Context, containing models.SourceDescriptor, containingID any, target models.SourceDescriptor, subtype string) ([]models.AOI, error)

	mu             sync.Mutex
	searchCalls    int
	subregionCalls int
}

var _ repositories.GeometryRepository = (*mockGeometryRepository)(nil)

func (m *mockGeometryRepository) SearchCandidates(ctx context.Context, desc models.SourceDescriptor, place string, principal string, limit int, floor float64) ([]models.Candidate, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	if m.SearchCandidatesFunc != nil {
		return m.SearchCandidatesFunc(ctx, desc, place, principal, limit, floor)
	}
	return nil, nil
}

func (m *mockGeometryRepository) SubregionsWithin(ctx context.Context, containing models.SourceDescriptor, containingID any, target models.SourceDescriptor, subtype string) ([]models.AOI, error) {
	m.mu.Lock()
	m.subregionCalls++
	m.mu.Unlock()
	if m.SubregionsWithinFunc != nil {
		return m.SubregionsWithinFunc(ctx, containing, containingID, target, subtype)
	}
	return nil, nil
}

func (m *mockGeometryRepository) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

func (m *mockGeometryRepository) SubregionCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subregionCalls
}

// The resolver schedules one pipeline per place concurrently, so the stage
// mocks guard their counters too.
type mockSearcher struct {
	SearchFunc func(ctx context.Context, place string, principal string) ([]models.Candidate, error)

	mu          sync.Mutex
	searchCalls int
}

var _ CandidateSearcher = (*mockSearcher)(nil)

func (m *mockSearcher) Search(ctx context.Context, place string, principal string) ([]models.Candidate, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, place, principal)
	}
	return nil, nil
}

func (m *mockSearcher) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

type mockOracle struct {
	SelectFunc func(ctx context.Context, question string, candidates []models.Candidate) (models.Selection, error)

	mu          sync.Mutex
	selectCalls int
}

var _ SelectionOracle = (*mockOracle)(nil)

func (m *mockOracle) Select(ctx context.Context, question string, candidates []models.Candidate) (models.Selection, error) {
	m.mu.Lock()
	m.selectCalls++
	m.mu.Unlock()
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, question, candidates)
	}
	return models.Selection{}, nil
}

func (m *mockOracle) SelectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectCalls
}

type mockExpander struct {
	ExpandFunc func(ctx context.Context, selection models.Selection, concept string) ([]models.AOI, error)

	mu          sync.Mutex
	expandCalls int
}

var _ SubregionExpander = (*mockExpander)(nil)

func (m *mockExpander) Expand(ctx context.Context, selection models.Selection, concept string) ([]models.AOI, error) {
	m.mu.Lock()
	m.expandCalls++
	m.mu.Unlock()
	if m.ExpandFunc != nil {
		return m.ExpandFunc(ctx, selection, concept)
	}
	return nil, nil
}

func (m *mockExpander) ExpandCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expandCalls
}
