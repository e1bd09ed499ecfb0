package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
)

// GeometrySource identifies one of the spatial datasets the engine resolves
// places against. The set is closed and small, so dispatch is by exhaustive
// switch over these constants rather than any dynamic registry.
type GeometrySource string

const (
	// SourceGADM is the nested administrative hierarchy
	// (country -> state-province -> district-county -> municipality -> locality).
	SourceGADM GeometrySource = "gadm"
	// SourceKBA is the Key Biodiversity Area registry.
	SourceKBA GeometrySource = "kba"
	// SourceWDPA is the World Database on Protected Areas.
	SourceWDPA GeometrySource = "wdpa"
	// SourceLandmark is the indigenous and community land registry.
	SourceLandmark GeometrySource = "landmark"
	// SourceCustom holds user-drawn areas, scoped to their owning user.
	SourceCustom GeometrySource = "custom"
)

// IDKind declares how a source types its local identifiers.
type IDKind int

const (
	// IDKindOpaque identifiers are free-form strings, e.g. "IND.21.10_1".
	IDKindOpaque IDKind = iota
	// IDKindNumeric identifiers are stored as integers, e.g. sitrecid 18437.
	IDKindNumeric
)

// SourceDescriptor declares the storage shape of one geometry source: where
// it lives, how its identifiers are typed and how it participates in ranking
// and result caps.
type SourceDescriptor struct {
	Source   GeometrySource
	Table    string
	IDColumn string
	IDKind   IDKind

	// Priority breaks similarity ties during candidate ranking; lower wins.
	Priority int

	// ResultCap bounds how many AOIs one resolution may yield from this
	// source. Fine-grained registries cap lower than administrative areas.
	ResultCap int

	// FixedSubtype is selected as a literal for tables without a subtype
	// column. Empty means the table carries a per-row subtype column.
	FixedSubtype string

	// RequiresPrincipal marks sources whose rows belong to a user and must
	// never be searched without one.
	RequiresPrincipal bool
}

// Descriptors returns every registered geometry source in ranking priority
// order. The slice is freshly allocated; callers may reorder or filter it.
func Descriptors() []SourceDescriptor {
	return []SourceDescriptor{
		{Source: SourceGADM, Table: "geometries_gadm", IDColumn: "gadm_id", IDKind: IDKindOpaque, Priority: 0, ResultCap: 50},
		{Source: SourceWDPA, Table: "geometries_wdpa", IDColumn: "wdpa_pid", IDKind: IDKindOpaque, Priority: 1, ResultCap: 25},
		{Source: SourceKBA, Table: "geometries_kba", IDColumn: "sitrecid", IDKind: IDKindNumeric, Priority: 2, ResultCap: 25},
		{Source: SourceLandmark, Table: "geometries_landmark", IDColumn: "landmark_id", IDKind: IDKindOpaque, Priority: 3, ResultCap: 25},
		{Source: SourceCustom, Table: "custom_areas", IDColumn: "id", IDKind: IDKindOpaque, Priority: 4, ResultCap: 50, FixedSubtype: "custom-area", RequiresPrincipal: true},
	}
}

// DescriptorFor returns the descriptor for a source.
func DescriptorFor(source GeometrySource) (SourceDescriptor, bool) {
	for _, d := range Descriptors() {
		if d.Source == source {
			return d, true
		}
	}
	return SourceDescriptor{}, false
}

// PriorityOf returns the ranking priority for a source. Unknown sources rank
// after every known one so a corrupt row can never displace a real match.
func PriorityOf(source GeometrySource) int {
	if d, ok := DescriptorFor(source); ok {
		return d.Priority
	}
	return len(Descriptors())
}

// CoerceID validates a local identifier against the source's declared kind
// and returns the value to bind in SQL. Numeric-string sources must parse as
// an integer; a failure is reported, never silently passed through.
func (d SourceDescriptor) CoerceID(id string) (any, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty %s identifier", apperrors.ErrInvalidIdentifier, d.Source)
	}
	switch d.IDKind {
	case IDKindNumeric:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s identifier %q is not numeric", apperrors.ErrInvalidIdentifier, d.Source, id)
		}
		return n, nil
	default:
		return trimmed, nil
	}
}
