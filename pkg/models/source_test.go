package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
)

func TestDescriptorsPriorityOrder(t *testing.T) {
	descs := Descriptors()
	require.Len(t, descs, 5)

	for i, d := range descs {
		assert.Equal(t, i, d.Priority, "descriptor %s out of priority order", d.Source)
	}

	assert.Equal(t, SourceGADM, descs[0].Source)
	assert.Equal(t, SourceCustom, descs[len(descs)-1].Source)
}

func TestDescriptorFor(t *testing.T) {
	d, ok := DescriptorFor(SourceKBA)
	require.True(t, ok)
	assert.Equal(t, "geometries_kba", d.Table)
	assert.Equal(t, "sitrecid", d.IDColumn)
	assert.Equal(t, IDKindNumeric, d.IDKind)
	assert.Equal(t, 25, d.ResultCap)

	_, ok = DescriptorFor(GeometrySource("osm"))
	assert.False(t, ok)
}

func TestDescriptorForCustomAreas(t *testing.T) {
	d, ok := DescriptorFor(SourceCustom)
	require.True(t, ok)
	assert.True(t, d.RequiresPrincipal)
	assert.Equal(t, "custom-area", d.FixedSubtype)
	assert.Equal(t, 50, d.ResultCap)
}

func TestPriorityOfUnknownSourceRanksLast(t *testing.T) {
	assert.Equal(t, 0, PriorityOf(SourceGADM))
	assert.Equal(t, 2, PriorityOf(SourceKBA))
	assert.Equal(t, len(Descriptors()), PriorityOf(GeometrySource("bogus")))
}

func TestCoerceID(t *testing.T) {
	gadm, _ := DescriptorFor(SourceGADM)
	kba, _ := DescriptorFor(SourceKBA)

	tests := []struct {
		name    string
		desc    SourceDescriptor
		id      string
		want    any
		wantErr error
	}{
		{name: "opaque id passes through", desc: gadm, id: "IND.26.1_1", want: "IND.26.1_1"},
		{name: "opaque id trimmed", desc: gadm, id: "  PRT.11_1 ", want: "PRT.11_1"},
		{name: "numeric id parsed", desc: kba, id: "18437", want: int64(18437)},
		{name: "empty id rejected", desc: gadm, id: "   ", wantErr: apperrors.ErrInvalidIdentifier},
		{name: "non-numeric kba id rejected", desc: kba, id: "IND.26_1", wantErr: apperrors.ErrInvalidIdentifier},
		{name: "numeric with junk rejected", desc: kba, id: "18437; DROP TABLE", wantErr: apperrors.ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.desc.CoerceID(tt.id)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
