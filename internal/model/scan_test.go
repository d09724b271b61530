package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdict_Valid(t *testing.T) {
	assert.True(t, VerdictGenuine.Valid())
	assert.True(t, VerdictCounterfeit.Valid())
	assert.False(t, Verdict("suspicious").Valid())
	assert.False(t, Verdict("").Valid())
}

func TestClassification_Validate(t *testing.T) {
	denom := "Rs. 500"

	tests := []struct {
		name    string
		c       Classification
		wantErr bool
	}{
		{
			name: "valid genuine",
			c: Classification{
				Verdict:      VerdictGenuine,
				Confidence:   96.4,
				Denomination: &denom,
				Features:     []Feature{{Name: "Watermark", Score: 85.5}},
			},
		},
		{
			name: "boundaries are inclusive",
			c: Classification{
				Verdict:    VerdictCounterfeit,
				Confidence: 100,
				Features:   []Feature{{Name: "Micro-text", Score: 0}},
			},
		},
		{
			name:    "unknown verdict",
			c:       Classification{Verdict: "unknown", Confidence: 50},
			wantErr: true,
		},
		{
			name:    "confidence above range",
			c:       Classification{Verdict: VerdictGenuine, Confidence: 100.01},
			wantErr: true,
		},
		{
			name:    "confidence is NaN",
			c:       Classification{Verdict: VerdictGenuine, Confidence: math.NaN()},
			wantErr: true,
		},
		{
			name: "negative feature score",
			c: Classification{
				Verdict:    VerdictGenuine,
				Confidence: 50,
				Features:   []Feature{{Name: "Watermark", Score: -1}},
			},
			wantErr: true,
		},
		{
			name: "unnamed feature",
			c: Classification{
				Verdict:    VerdictGenuine,
				Confidence: 50,
				Features:   []Feature{{Score: 10}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidScan)
				return
			}
			require.NoError(t, err)
		})
	}
}
