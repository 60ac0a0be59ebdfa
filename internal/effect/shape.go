package effect

import (
	"sort"
	"strconv"

	"github.com/fdg312/careview/internal/coalesce"
)

// Shape prepares the payload for cards and charts. An absent payload (nil
// or a falsy body) yields nil so the caller can show "not available"
// rather than a flat chart.
//
// Both series start with the current-value anchor followed by one point
// per week in ascending week order. Chart values fall back to 0, summary
// values keep nil.
func Shape(payload *PredictionPayload) *Projection {
	if payload.IsAbsent() {
		return nil
	}

	sorted := make([]WeeklyPrediction, len(payload.WeeklyPredictions))
	copy(sorted, payload.WeeklyPredictions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Week < sorted[j].Week
	})

	p := &Projection{
		CurrentWeight: payload.CurrentWeight,
		CurrentBMI:    payload.CurrentBMI,
		TotalMinutes:  payload.TotalExerciseMinutes,
	}

	var last WeeklyPrediction
	if len(sorted) > 0 {
		last = sorted[len(sorted)-1]
	}
	p.PredictedWeight = weightOf(last, payload)
	p.PredictedBMI = bmiOf(last, payload)

	p.WeightSeries = make([]ChartPoint, 0, len(sorted)+1)
	p.WeightSeries = append(p.WeightSeries, ChartPoint{
		Label: AnchorLabel,
		Value: coalesce.Or(0, payload.CurrentWeight),
	})
	p.BMISeries = make([]ChartPoint, 0, len(sorted)+1)
	p.BMISeries = append(p.BMISeries, ChartPoint{
		Label: AnchorLabel,
		Value: coalesce.Or(0, payload.CurrentBMI),
	})

	for _, w := range sorted {
		label := WeekLabel(w.Week)
		p.WeightSeries = append(p.WeightSeries, ChartPoint{
			Label: label,
			Value: coalesce.Or(0, weightOf(w, payload)),
		})
		p.BMISeries = append(p.BMISeries, ChartPoint{
			Label: label,
			Value: coalesce.Or(0, bmiOf(w, payload)),
		})
	}

	return p
}

// weightOf: predicted_weight → predicted_weght → current_weight
func weightOf(w WeeklyPrediction, payload *PredictionPayload) *float64 {
	return coalesce.First(w.PredictedWeight, w.PredictedWeght, payload.CurrentWeight)
}

// bmiOf: predicted_bmi → current_bmi
func bmiOf(w WeeklyPrediction, payload *PredictionPayload) *float64 {
	return coalesce.First(w.PredictedBMI, payload.CurrentBMI)
}

// WeekLabel formats a week number without trailing zeros: 1 → "1주", 1.5 → "1.5주".
func WeekLabel(week float64) string {
	if week == 0 {
		week = 0 // -0
	}
	return strconv.FormatFloat(week, 'f', -1, 64) + "주"
}
