package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
	"github.com/naturewatch/aoi-engine/pkg/database"
	"github.com/naturewatch/aoi-engine/pkg/models"
	"github.com/naturewatch/aoi-engine/pkg/testhelpers"
)

func testRepository(t *testing.T) GeometryRepository {
	t.Helper()
	testDB := testhelpers.GetTestDB(t)
	return NewGeometryRepository(&database.DB{Pool: testDB.Pool}, zap.NewNop())
}

func mustDescriptor(t *testing.T, source models.GeometrySource) models.SourceDescriptor {
	t.Helper()
	d, ok := models.DescriptorFor(source)
	require.True(t, ok)
	return d
}

func TestSearchCandidatesGADM(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)

	candidates, err := repo.SearchCandidates(context.Background(), gadm, "Odisha", "", 10, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	// The state itself outranks the districts that merely mention it.
	assert.Equal(t, "IND.26_1", candidates[0].SrcID)
	assert.Equal(t, "Odisha, India", candidates[0].Name)
	assert.Equal(t, "state-province", candidates[0].Subtype)
	assert.Equal(t, models.SourceGADM, candidates[0].Source)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Similarity, candidates[i].Similarity,
			"results must come back ordered by similarity")
	}
	for _, c := range candidates {
		assert.Greater(t, c.Similarity, 0.0)
		assert.LessOrEqual(t, c.Similarity, 1.0)
	}
}

func TestSearchCandidatesFuzzyMisspelling(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)

	candidates, err := repo.SearchCandidates(context.Background(), gadm, "Odissa", "", 10, 0.1)
	require.NoError(t, err)
	require.NotEmpty(t, candidates, "trigram search must tolerate misspellings")
	assert.Equal(t, "IND.26_1", candidates[0].SrcID)
}

func TestSearchCandidatesRespectsFloor(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)

	candidates, err := repo.SearchCandidates(context.Background(), gadm, "Zzyzx", "", 10, 0.3)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearchCandidatesRespectsLimit(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)

	candidates, err := repo.SearchCandidates(context.Background(), gadm, "Odisha", "", 1, 0.1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "IND.26_1", candidates[0].SrcID)
}

func TestSearchCandidatesNumericIDReturnedAsText(t *testing.T) {
	repo := testRepository(t)
	kba := mustDescriptor(t, models.SourceKBA)

	candidates, err := repo.SearchCandidates(context.Background(), kba, "Simlipal", "", 10, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "18437", candidates[0].SrcID)
	assert.Equal(t, "key-biodiversity-area", candidates[0].Subtype)
}

func TestSearchCandidatesCustomAreasScopedToPrincipal(t *testing.T) {
	repo := testRepository(t)
	custom := mustDescriptor(t, models.SourceCustom)

	candidates, err := repo.SearchCandidates(context.Background(), custom, "Survey Plot", testhelpers.CustomAreaOwner, 10, 0.2)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, testhelpers.CustomAreaID.String(), candidates[0].SrcID)
	assert.Equal(t, "My Survey Plot", candidates[0].Name)
	assert.Equal(t, "custom-area", candidates[0].Subtype, "fixed subtype is synthesized for the table")

	// Another user's areas are invisible.
	candidates, err = repo.SearchCandidates(context.Background(), custom, "Survey Plot", "someone-else", 10, 0.2)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearchCandidatesCustomAreasRequirePrincipal(t *testing.T) {
	repo := testRepository(t)
	custom := mustDescriptor(t, models.SourceCustom)

	_, err := repo.SearchCandidates(context.Background(), custom, "Survey Plot", "", 10, 0.2)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAuthorizationRequired)
}

func TestSubregionsWithinStrictContainment(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)

	aois, err := repo.SubregionsWithin(context.Background(), gadm, "IND.26_1", gadm, "district-county")
	require.NoError(t, err)

	ids := make([]string, 0, len(aois))
	for _, a := range aois {
		ids = append(ids, a.SrcID)
	}
	assert.ElementsMatch(t, []string{"IND.26.1_1", "IND.26.2_1"}, ids)
	assert.NotContains(t, ids, "IND.27.1_1",
		"a geometry straddling the boundary intersects but is not contained")

	for _, a := range aois {
		assert.Equal(t, models.SourceGADM, a.Source)
		assert.Equal(t, "district-county", a.Subtype)
	}
}

func TestSubregionsWithinCrossSource(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)
	kba := mustDescriptor(t, models.SourceKBA)

	aois, err := repo.SubregionsWithin(context.Background(), gadm, "IND.26_1", kba, "key-biodiversity-area")
	require.NoError(t, err)

	ids := make([]string, 0, len(aois))
	for _, a := range aois {
		ids = append(ids, a.SrcID)
	}
	assert.ElementsMatch(t, []string{"18437", "18438"}, ids)
}

func TestSubregionsWithinNumericContainingID(t *testing.T) {
	repo := testRepository(t)
	kba := mustDescriptor(t, models.SourceKBA)
	wdpa := mustDescriptor(t, models.SourceWDPA)

	// The WDPA fixture sits inside the Simlipal KBA square.
	aois, err := repo.SubregionsWithin(context.Background(), kba, int64(18437), wdpa, "protected-area")
	require.NoError(t, err)
	require.Len(t, aois, 1)
	assert.Equal(t, "555512345", aois[0].SrcID)
}

func TestSubregionsWithinUnknownContainingID(t *testing.T) {
	repo := testRepository(t)
	gadm := mustDescriptor(t, models.SourceGADM)

	aois, err := repo.SubregionsWithin(context.Background(), gadm, "ZZZ.99_9", gadm, "district-county")
	require.NoError(t, err)
	assert.Empty(t, aois)
}
