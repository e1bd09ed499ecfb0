package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare object",
			response: `{"source":"gadm","src_id":"IND.26_1"}`,
			want:     `{"source":"gadm","src_id":"IND.26_1"}`,
		},
		{
			name:     "object with surrounding prose",
			response: "Based on the question, the best match is:\n{\"src_id\": \"GEO\"}\nHope that helps!",
			want:     `{"src_id": "GEO"}`,
		},
		{
			name:     "json code fence",
			response: "```json\n{\"src_id\": \"PRT.11_1\"}\n```",
			want:     `{"src_id": "PRT.11_1"}`,
		},
		{
			name:     "plain code fence",
			response: "```\n{\"src_id\": \"18437\"}\n```",
			want:     `{"src_id": "18437"}`,
		},
		{
			name:     "think tags stripped",
			response: "<think>{\"not\": \"this one\"}</think>{\"src_id\": \"USA.11_1\"}",
			want:     `{"src_id": "USA.11_1"}`,
		},
		{
			name:     "braces inside string literals",
			response: `{"name": "We{ird} Pla,ce", "src_id": "X"}`,
			want:     `{"name": "We{ird} Pla,ce", "src_id": "X"}`,
		},
		{
			name:     "array payload",
			response: `The areas are [1, 2, 3] in total.`,
			want:     `[1, 2, 3]`,
		},
		{
			name:     "no json at all",
			response: "I cannot pick a location from that list.",
			wantErr:  true,
		},
		{
			name:     "unbalanced braces",
			response: `{"src_id": "GEO"`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type pick struct {
		Source string `json:"source"`
		SrcID  string `json:"src_id"`
	}

	p, err := ParseJSONResponse[pick]("```json\n{\"source\": \"kba\", \"src_id\": \"18437\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "kba", p.Source)
	assert.Equal(t, "18437", p.SrcID)

	_, err = ParseJSONResponse[pick]("no payload here")
	assert.Error(t, err)
}

func TestMockClientTracksCalls(t *testing.T) {
	m := NewMockClient()
	m.CompleteFunc = func(_ context.Context, prompt, system string, temp float64) (string, error) {
		return `{"ok": true}`, nil
	}

	out, err := m.Complete(context.Background(), "pick one", "system", 0)
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	assert.Equal(t, 1, m.CompleteCalls)
	assert.Equal(t, "pick one", m.LastPrompt)
	assert.Equal(t, "mock-model", m.Model())

	m.Reset()
	assert.Zero(t, m.CompleteCalls)
	assert.Empty(t, m.LastPrompt)
}
