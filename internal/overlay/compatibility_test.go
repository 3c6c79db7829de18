package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckRangeWithinBounds(t *testing.T) {
	c := &Compatibility{Min: "v1.0.0", Max: "v2.0.0"}
	assert.Empty(t, c.CheckRange("v1.5.0"))
}

func TestCheckRangeBelowMinimum(t *testing.T) {
	c := &Compatibility{Min: "v1.0.0", Max: "v2.0.0"}
	assert.NotEmpty(t, c.CheckRange("v0.9.0"))
}

func TestCheckRangeAboveMaximum(t *testing.T) {
	c := &Compatibility{Min: "v1.0.0", Max: "v2.0.0"}
	assert.NotEmpty(t, c.CheckRange("v2.1.0"))
}

func TestCheckRangeNilCompatibilityNeverWarns(t *testing.T) {
	var c *Compatibility
	assert.Empty(t, c.CheckRange("v9.9.9"))
}

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"v1.2.0", "v1.1.0", 1},
		{"v1.0.0", "v1.1.0", -1},
		{"v2.0.0", "v1.9.9", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, compareVersions(tc.a, tc.b), "compareVersions(%q, %q)", tc.a, tc.b)
	}
}
