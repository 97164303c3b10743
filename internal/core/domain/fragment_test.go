package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetRange_Len(t *testing.T) {
	assert.Equal(t, 10, OffsetRange{Start: 5, End: 15}.Len())
	assert.Equal(t, 0, OffsetRange{Start: 5, End: 5}.Len())
	assert.Equal(t, 0, OffsetRange{Start: 9, End: 3}.Len())
}

func TestOffsetRange_OverlapRatio(t *testing.T) {
	tests := []struct {
		name     string
		a, b     OffsetRange
		expected float64
	}{
		{"disjoint", OffsetRange{0, 10}, OffsetRange{10, 20}, 0},
		{"identical", OffsetRange{0, 10}, OffsetRange{0, 10}, 1},
		{"half of shorter", OffsetRange{0, 10}, OffsetRange{5, 25}, 0.5},
		{"contained", OffsetRange{0, 100}, OffsetRange{20, 30}, 1},
		{"zero width", OffsetRange{5, 5}, OffsetRange{0, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.a.OverlapRatio(tt.b), 1e-9)
			assert.InDelta(t, tt.expected, tt.b.OverlapRatio(tt.a), 1e-9)
		})
	}
}

func TestFragment_LengthCountsRunes(t *testing.T) {
	f := Fragment{Text: "naïve café"}
	assert.Equal(t, 10, f.Length())
}
