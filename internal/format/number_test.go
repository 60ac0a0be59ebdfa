package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestNumber(t *testing.T) {
	assert.Equal(t, "72.5", Number(f(72.5), 1))
	assert.Equal(t, "70.0", Number(f(70), 1))
	assert.Equal(t, "1,234.5", Number(f(1234.5), 1))
	assert.Equal(t, "1,500", Number(f(1500), 0))
	assert.Equal(t, "0.0", Number(f(0), 1))
}

func TestNumberPlaceholder(t *testing.T) {
	assert.Equal(t, Placeholder, Number(nil, 1))
	assert.Equal(t, Placeholder, Number(f(math.NaN()), 1))
	assert.Equal(t, Placeholder, Number(f(math.Inf(1)), 0))
}
