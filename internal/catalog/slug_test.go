package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Galoya Reserve", "galoya-reserve"},
		{"collapses whitespace", "  The   Great\tHarvest ", "the-great-harvest"},
		{"keeps punctuation", "Annual Health & Wellness Camp", "annual-health-&-wellness-camp"},
		{"drops path characters", "50/50 Blend? #1", "5050-blend-1"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, validSlug("galoya-original"))
	assert.False(t, validSlug(""))
	assert.False(t, validSlug("has space"))
	assert.False(t, validSlug("Upper"))
	assert.False(t, validSlug("a/b"))
}
