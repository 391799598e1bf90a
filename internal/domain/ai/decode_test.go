package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPlain(t *testing.T) {
	var out struct {
		Relevant   bool   `json:"relevant"`
		Confidence int    `json:"confidence"`
		Reason     string `json:"reason"`
	}
	err := DecodeJSON(`{"relevant": true, "confidence": 82, "reason": "direct match"}`, &out)
	require.NoError(t, err)
	assert.True(t, out.Relevant)
	assert.Equal(t, 82, out.Confidence)
}

func TestDecodeJSONFenced(t *testing.T) {
	cases := map[string]string{
		"fence with language tag": "```json\n{\"relevant\": false}\n```",
		"bare fence":              "```\n{\"relevant\": false}\n```",
		"fence without newline":   "```{\"relevant\": false}```",
		"surrounding whitespace":  "  \n```json\n{\"relevant\": false}\n```  \n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var out struct {
				Relevant bool `json:"relevant"`
			}
			require.NoError(t, DecodeJSON(raw, &out))
			assert.False(t, out.Relevant)
		})
	}
}

func TestDecodeJSONFencedArray(t *testing.T) {
	var ids []string
	require.NoError(t, DecodeJSON("```json\n[\"a\", \"b\"]\n```", &ids))
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestDecodeJSONProse(t *testing.T) {
	var out map[string]any
	err := DecodeJSON("The article is clearly relevant to the project.", &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadResponse))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0, 1}, []float32{1, 0, 1}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
