package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCards(t *testing.T) {
	s := Summary{
		LatestWeight: f(70.24),
		WeightSeries: []float64{69, 70.24},
		SleepSeries:  []float64{7.5},
	}

	cards := Cards(s)
	require.Len(t, cards, 3)

	assert.Equal(t, "몸무게", cards[0].Title)
	assert.Equal(t, "kg", cards[0].Unit)
	assert.Equal(t, "70.2", cards[0].Display)
	assert.Equal(t, cardHint, cards[0].Hint)

	assert.Equal(t, "운동 시간", cards[1].Title)
	assert.Nil(t, cards[1].Value)
	assert.Equal(t, "-", cards[1].Display)
	assert.NotNil(t, cards[1].Series)

	// no latest value: falls back to the end of the series
	assert.Equal(t, "수면 시간", cards[2].Title)
	require.NotNil(t, cards[2].Value)
	assert.Equal(t, 7.5, *cards[2].Value)
	assert.Equal(t, "7.5", cards[2].Display)
}
