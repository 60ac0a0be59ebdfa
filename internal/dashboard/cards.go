package dashboard

import (
	"math"

	"github.com/fdg312/careview/internal/coalesce"
	"github.com/fdg312/careview/internal/format"
)

const cardHint = "기록실 기준, 최근 1주 기록"

// Cards returns the weight, exercise and sleep cards in display order.
func Cards(s Summary) []MetricCard {
	s = s.normalized()
	return []MetricCard{
		newCard(MetricWeightKg, "몸무게", "kg", s.LatestWeight, s.WeightSeries),
		newCard(MetricExerciseDurationHours, "운동 시간", "h", s.LatestExercise, s.ExerciseSeries),
		newCard(MetricSleepDurationHours, "수면 시간", "h", s.LatestSleep, s.SleepSeries),
	}
}

func newCard(key, title, unit string, latest *float64, series []float64) MetricCard {
	value := coalesce.First(latest, coalesce.Last(series))
	return MetricCard{
		Key:     key,
		Title:   title,
		Unit:    unit,
		Value:   value,
		Display: format.Number(value, 1),
		Series:  series,
		Hint:    cardHint,
	}
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
