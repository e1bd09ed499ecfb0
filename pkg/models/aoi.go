package models

import "encoding/json"

// Candidate is one approximate name match returned by a geometry source.
// Candidates live for the duration of a single resolution and are never
// persisted.
type Candidate struct {
	Source     GeometrySource `json:"source"`
	SrcID      string         `json:"src_id"`
	Name       string         `json:"name"`
	Subtype    string         `json:"subtype"`
	Similarity float64        `json:"similarity_score"`
}

// Selection is the one candidate the oracle chose for a place. It carries the
// same fields as the candidate it was validated against.
type Selection = Candidate

// AOI is a resolved geographic entity handed to downstream analytics.
type AOI struct {
	Source  GeometrySource `json:"source"`
	SrcID   string         `json:"src_id"`
	Name    string         `json:"name"`
	Subtype string         `json:"subtype"`
}

// MarshalJSON additionally exposes the identifier under the source-specific
// column name (gadm_id, sitrecid, ...) so downstream consumers that key on
// the native field keep working.
func (a AOI) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"source":  a.Source,
		"src_id":  a.SrcID,
		"name":    a.Name,
		"subtype": a.Subtype,
	}
	if d, ok := DescriptorFor(a.Source); ok {
		out[d.IDColumn] = a.SrcID
	}
	return json.Marshal(out)
}

// AOISelection is the final engine output for a successful resolution.
// AOIs[0] is the designated primary AOI: the first AOI of the first place in
// input order.
type AOISelection struct {
	Name       string   `json:"name"`
	AOIs       []AOI    `json:"aois"`
	Transcript []string `json:"transcript,omitempty"`
}

// Primary returns the designated primary AOI.
func (s *AOISelection) Primary() (AOI, bool) {
	if len(s.AOIs) == 0 {
		return AOI{}, false
	}
	return s.AOIs[0], true
}

// ClarificationKind distinguishes the non-error outcomes that end a
// resolution with guidance instead of a selection.
type ClarificationKind string

const (
	ClarificationAmbiguousPlace ClarificationKind = "ambiguous-place"
	ClarificationNoMatch        ClarificationKind = "no-match"
	ClarificationTooManyResults ClarificationKind = "too-many-results"
	ClarificationMixedSource    ClarificationKind = "mixed-source"
)

// ClarificationRequest is a terminal, non-error outcome. The message always
// carries concrete next steps so the surrounding conversation can relay it
// verbatim rather than treating it as a failure.
type ClarificationRequest struct {
	Kind       ClarificationKind `json:"kind"`
	Message    string            `json:"message"`
	Candidates []Candidate       `json:"candidates,omitempty"`
}

// Resolution is the caller-facing result: exactly one of Selection or
// Clarification is set.
type Resolution struct {
	Selection     *AOISelection         `json:"selection,omitempty"`
	Clarification *ClarificationRequest `json:"clarification,omitempty"`
}
