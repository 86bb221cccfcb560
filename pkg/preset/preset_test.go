package preset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		quality float64
		scale   float64
	}{
		{"low", 0.40, 1.0},
		{"Medium", 0.65, 1.5},
		{" high ", 0.82, 2.0},
		{"", 0.65, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Get(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.quality, p.Quality)
			assert.Equal(t, tt.scale, p.Scale)
		})
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Get("ultra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "low")
}

func TestNamesOrdered(t *testing.T) {
	if diff := cmp.Diff([]string{"low", "medium", "high"}, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
