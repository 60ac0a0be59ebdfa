package effect

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func decodePayload(t *testing.T, raw string) *PredictionPayload {
	t.Helper()
	var p *PredictionPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestShapeNilPayload(t *testing.T) {
	assert.Nil(t, Shape(nil))
	assert.Nil(t, Shape(decodePayload(t, `null`)))
}

func TestShapeLegacyWeightKey(t *testing.T) {
	p := decodePayload(t, `{
		"current_weight": 80,
		"weekly_predictions": [
			{"week": 2, "predicted_weght": 78},
			{"week": 1, "predicted_weight": 79}
		]
	}`)

	got := Shape(p)
	require.NotNil(t, got)

	assert.Equal(t, []ChartPoint{
		{Label: "현재", Value: 80},
		{Label: "1주", Value: 79},
		{Label: "2주", Value: 78},
	}, got.WeightSeries)
	require.NotNil(t, got.PredictedWeight)
	assert.Equal(t, 78.0, *got.PredictedWeight)

	// no bmi anywhere: chart coerces to 0, summary stays nil
	assert.Equal(t, []ChartPoint{
		{Label: "현재", Value: 0},
		{Label: "1주", Value: 0},
		{Label: "2주", Value: 0},
	}, got.BMISeries)
	assert.Nil(t, got.PredictedBMI)
	assert.Nil(t, got.CurrentBMI)
}

func TestShapeWeightPriority(t *testing.T) {
	p := &PredictionPayload{
		CurrentWeight: f(80),
		WeeklyPredictions: []WeeklyPrediction{
			{Week: 1, PredictedWeight: f(79), PredictedWeght: f(10)},
			{Week: 2},
		},
	}

	got := Shape(p)
	assert.Equal(t, 79.0, got.WeightSeries[1].Value, "predicted_weight wins over legacy key")
	assert.Equal(t, 80.0, got.WeightSeries[2].Value, "falls back to current weight")
	assert.Equal(t, 80.0, *got.PredictedWeight)
}

func TestShapeNoPredictions(t *testing.T) {
	got := Shape(&PredictionPayload{CurrentWeight: f(80), CurrentBMI: f(24.5), TotalExerciseMinutes: f(600)})

	require.NotNil(t, got)
	assert.Equal(t, 80.0, *got.PredictedWeight)
	assert.Equal(t, 24.5, *got.PredictedBMI)
	assert.Equal(t, 600.0, *got.TotalMinutes)
	assert.Equal(t, []ChartPoint{{Label: AnchorLabel, Value: 80}}, got.WeightSeries)
	assert.Equal(t, []ChartPoint{{Label: AnchorLabel, Value: 24.5}}, got.BMISeries)

	empty := Shape(&PredictionPayload{})
	assert.Nil(t, empty.PredictedWeight)
	assert.Nil(t, empty.PredictedBMI)
	assert.Equal(t, []ChartPoint{{Label: AnchorLabel, Value: 0}}, empty.WeightSeries)
}

func TestShapeBMIHasNoLegacyFallback(t *testing.T) {
	p := &PredictionPayload{
		CurrentBMI: f(25),
		WeeklyPredictions: []WeeklyPrediction{
			{Week: 1, PredictedBMI: f(24.8)},
			{Week: 2, PredictedWeght: f(78)},
		},
	}

	got := Shape(p)
	assert.Equal(t, []ChartPoint{
		{Label: "현재", Value: 25},
		{Label: "1주", Value: 24.8},
		{Label: "2주", Value: 25},
	}, got.BMISeries)
	assert.Equal(t, 25.0, *got.PredictedBMI)
}

func TestShapeSeriesLengths(t *testing.T) {
	for n := 0; n < 6; n++ {
		p := &PredictionPayload{}
		for i := n; i > 0; i-- {
			p.WeeklyPredictions = append(p.WeeklyPredictions, WeeklyPrediction{Week: float64(i)})
		}
		got := Shape(p)
		assert.Len(t, got.WeightSeries, n+1)
		assert.Len(t, got.BMISeries, n+1)
		assert.Equal(t, AnchorLabel, got.WeightSeries[0].Label)
		assert.Equal(t, AnchorLabel, got.BMISeries[0].Label)
		for i := 1; i < len(got.WeightSeries); i++ {
			assert.Equal(t, WeekLabel(float64(i)), got.WeightSeries[i].Label)
		}
	}
}

func TestShapeDoesNotMutatePayload(t *testing.T) {
	p := &PredictionPayload{WeeklyPredictions: []WeeklyPrediction{{Week: 2}, {Week: 1}}}
	Shape(p)
	assert.Equal(t, 2.0, p.WeeklyPredictions[0].Week)
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "1주", WeekLabel(1))
	assert.Equal(t, "1.5주", WeekLabel(1.5))
	assert.Equal(t, "0주", WeekLabel(0))
	assert.Equal(t, "12주", WeekLabel(12))
	assert.Equal(t, "0주", WeekLabel(math.Copysign(0, -1)))
}

func TestShapeNumericStrings(t *testing.T) {
	p := Shape(decodePayload(t, `{
		"current_weight": "80",
		"current_bmi": " 25.5 ",
		"weekly_predictions": [
			{"week": "2", "predicted_weight": 78},
			{"week": 1, "predicted_weight": "79", "predicted_bmi": "abc"}
		]
	}`))
	require.NotNil(t, p)

	assert.Equal(t, []ChartPoint{{AnchorLabel, 80}, {"1주", 79}, {"2주", 78}}, p.WeightSeries)
	assert.Equal(t, []ChartPoint{{AnchorLabel, 25.5}, {"1주", 25.5}, {"2주", 25.5}}, p.BMISeries)
	require.NotNil(t, p.CurrentWeight)
	assert.Equal(t, 80.0, *p.CurrentWeight)
}

func TestShapeRejectsNonNumericStrings(t *testing.T) {
	p := decodePayload(t, `{"current_weight": "NaN", "current_bmi": "Infinity", "total_exercise_minutes": "0x10",
		"weekly_predictions": [{"week": "", "predicted_weight": "1_000"}]}`)
	assert.Nil(t, p.CurrentWeight)
	assert.Nil(t, p.CurrentBMI)
	assert.Nil(t, p.TotalExerciseMinutes)
	require.Len(t, p.WeeklyPredictions, 1)
	assert.Equal(t, 0.0, p.WeeklyPredictions[0].Week)
	assert.Nil(t, p.WeeklyPredictions[0].PredictedWeight)
}

func TestShapeFalsyPayloadIsAbsent(t *testing.T) {
	for _, body := range []string{`false`, `0`, `-0`, `0.0`, `""`} {
		p := decodePayload(t, body)
		assert.True(t, p.IsAbsent(), body)
		assert.Nil(t, Shape(p), body)
	}
	for _, body := range []string{`true`, `1`, `"x"`, `{}`} {
		p := decodePayload(t, body)
		assert.False(t, p.IsAbsent(), body)
		assert.NotNil(t, Shape(p), body)
	}
}

func TestPredictionPayloadTolerantDecode(t *testing.T) {
	p := decodePayload(t, `{
		"current_weight": "80",
		"current_bmi": 24.1,
		"total_exercise_minutes": null,
		"weekly_predictions": [
			{"predicted_weight": 79},
			"junk",
			{"week": "3", "predicted_bmi": 23.9}
		]
	}`)

	require.NotNil(t, p.CurrentWeight)
	assert.Equal(t, 80.0, *p.CurrentWeight)
	require.NotNil(t, p.CurrentBMI)
	assert.Equal(t, 24.1, *p.CurrentBMI)
	assert.Nil(t, p.TotalExerciseMinutes)
	require.Len(t, p.WeeklyPredictions, 3)
	assert.Equal(t, 0.0, p.WeeklyPredictions[0].Week)
	assert.Equal(t, 0.0, p.WeeklyPredictions[1].Week)
	assert.Equal(t, 3.0, p.WeeklyPredictions[2].Week)

	noWeeks := decodePayload(t, `{"current_weight": 80, "weekly_predictions": {}}`)
	assert.Empty(t, noWeeks.WeeklyPredictions)
	assert.Len(t, Shape(noWeeks).WeightSeries, 1)
}
