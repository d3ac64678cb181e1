package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConcentrationRange(t *testing.T) {
	c := ParseConcentration("4~5%", "1310-73-2", "%")
	require.NotNil(t, c)
	assert.Equal(t, 4.0, *c.Low)
	assert.Equal(t, 5.0, *c.High)
	assert.Equal(t, 4.5, *c.Rep)
	assert.Equal(t, "%", c.Unit)
}

func TestParseConcentrationComparator(t *testing.T) {
	tests := []struct {
		in, cmp string
		value   float64
	}{
		{"<= 5 %", "≤", 5},
		{">=90%", "≥", 90},
		{"< 0.1", "<", 0.1},
		{"≥ 60", "≥", 60},
	}
	for _, tt := range tests {
		c := ParseConcentration(tt.in, "", "%")
		require.NotNil(t, c, tt.in)
		assert.Equal(t, tt.cmp, c.Cmp, tt.in)
		assert.Equal(t, tt.value, *c.Value, tt.in)
		assert.Equal(t, tt.value, *c.Rep, tt.in)
	}
}

func TestParseConcentrationSingleWithUnit(t *testing.T) {
	c := ParseConcentration("250 ppm", "", "%")
	require.NotNil(t, c)
	assert.Equal(t, 250.0, *c.Value)
	assert.Equal(t, "ppm", c.Unit)
}

func TestParseConcentrationLoosePercentBounds(t *testing.T) {
	// unitless values are assumed percent and must stay in [0,100]
	assert.Nil(t, ParseConcentration("150", "", "%"))
	c := ParseConcentration("35", "", "%")
	require.NotNil(t, c)
	assert.Equal(t, "%", c.Unit)
}

func TestParseConcentrationRejectsCASFragment(t *testing.T) {
	// "1310-73" is the leading fragment of the row's own CAS number
	assert.Nil(t, ParseConcentration("1310-73-2", "1310-73-2", "%"))
}

func TestParseConcentrationEmpty(t *testing.T) {
	assert.Nil(t, ParseConcentration("", "", "%"))
	assert.Nil(t, ParseConcentration("해당없음", "", "%"))
}
