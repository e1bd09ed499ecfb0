package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naturewatch/aoi-engine/pkg/models"
)

func makeAOIs(source models.GeometrySource, n int) []models.AOI {
	aois := make([]models.AOI, 0, n)
	for i := 0; i < n; i++ {
		aois = append(aois, models.AOI{
			Source:  source,
			SrcID:   fmt.Sprintf("ID-%d", i),
			Name:    fmt.Sprintf("Area %d", i),
			Subtype: "district-county",
		})
	}
	return aois
}

func TestEnforceGuardrailsEmptyList(t *testing.T) {
	assert.Nil(t, enforceGuardrails(nil))
	assert.Nil(t, enforceGuardrails([]models.AOI{}))
}

func TestEnforceGuardrailsSingleton(t *testing.T) {
	assert.Nil(t, enforceGuardrails(makeAOIs(models.SourceGADM, 1)))
}

func TestEnforceGuardrailsAdminCap(t *testing.T) {
	assert.Nil(t, enforceGuardrails(makeAOIs(models.SourceGADM, 50)), "exactly at the cap passes")

	clar := enforceGuardrails(makeAOIs(models.SourceGADM, 51))
	require.NotNil(t, clar)
	assert.Equal(t, models.ClarificationTooManyResults, clar.Kind)
	assert.Contains(t, clar.Message, "Found 51 areas")
	assert.Contains(t, clar.Message, "narrow down your search")
}

func TestEnforceGuardrailsRegistryCap(t *testing.T) {
	for _, source := range []models.GeometrySource{models.SourceKBA, models.SourceWDPA, models.SourceLandmark} {
		t.Run(string(source), func(t *testing.T) {
			assert.Nil(t, enforceGuardrails(makeAOIs(source, 25)))

			clar := enforceGuardrails(makeAOIs(source, 26))
			require.NotNil(t, clar)
			assert.Equal(t, models.ClarificationTooManyResults, clar.Kind)
			assert.Contains(t, clar.Message, "Found 26 areas")
		})
	}
}

func TestEnforceGuardrailsMixedSources(t *testing.T) {
	mixed := append(makeAOIs(models.SourceGADM, 2), makeAOIs(models.SourceKBA, 2)...)

	clar := enforceGuardrails(mixed)
	require.NotNil(t, clar)
	assert.Equal(t, models.ClarificationMixedSource, clar.Kind)
	assert.Contains(t, clar.Message, "gadm, kba", "source names are listed sorted")
}

func TestEnforceGuardrailsMixedSourceCheckedBeforeCardinality(t *testing.T) {
	// 60 mixed AOIs trip both guardrails; the source check wins.
	mixed := append(makeAOIs(models.SourceGADM, 30), makeAOIs(models.SourceWDPA, 30)...)

	clar := enforceGuardrails(mixed)
	require.NotNil(t, clar)
	assert.Equal(t, models.ClarificationMixedSource, clar.Kind)
}
