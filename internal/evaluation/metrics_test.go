package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"all relevant in top k", []string{"s1", "s2"}, []string{"s2", "s9", "s1"}, 10, 1.0},
		{"some relevant missing", []string{"s1", "s2", "s3", "s4"}, []string{"s1", "s3"}, 10, 0.5},
		{"empty results", []string{"s1"}, nil, 10, 0.0},
		{"no relevant salons", nil, []string{"s1"}, 10, 0.0},
		{"relevant beyond k", []string{"s1", "s2"}, []string{"s9", "s1", "s2"}, 2, 0.5},
		{"retrieved shorter than k", []string{"s1", "s2"}, []string{"s2"}, 10, 0.5},
		{"duplicates count once", []string{"s1", "s2"}, []string{"s1", "s1", "s1"}, 10, 0.5},
		{"duplicate labels count once", []string{"s1", "s1"}, []string{"s1"}, 10, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecallAtK(tt.relevant, tt.retrieved, tt.k), 1e-9)
		})
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"first result relevant", []string{"s1"}, []string{"s1", "s2"}, 10, 1.0},
		{"third result relevant", []string{"s3"}, []string{"s1", "s2", "s3"}, 10, 1.0 / 3},
		{"relevant beyond k", []string{"s3"}, []string{"s1", "s2", "s3"}, 2, 0.0},
		{"empty relevant", nil, []string{"s1"}, 10, 0.0},
		{"empty retrieved", []string{"s1"}, nil, 10, 0.0},
		{"first of several relevant", []string{"s4", "s2"}, []string{"s1", "s2", "s4"}, 10, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MRRAtK(tt.relevant, tt.retrieved, tt.k), 1e-9)
		})
	}
}
