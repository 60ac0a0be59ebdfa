package effect

import (
	"github.com/fdg312/careview/internal/format"
)

// StatCards returns the three summary cards of the effect page.
// A nil projection yields no cards.
func StatCards(p *Projection) []StatCard {
	if p == nil {
		return []StatCard{}
	}

	weight := StatCard{
		Key:   "weight",
		Label: "예상 체중 변화",
		Value: format.Number(p.PredictedWeight, 1),
		Unit:  "kg",
		Icon:  "W",
	}
	if p.CurrentWeight != nil {
		weight.Sub = "현재: " + format.Number(p.CurrentWeight, 1) + " kg"
	}

	bmi := StatCard{
		Key:   "bmi",
		Label: "BMI 개선",
		Value: format.Number(p.PredictedBMI, 1),
		Icon:  "B",
	}
	if p.CurrentBMI != nil {
		bmi.Sub = "현재: " + format.Number(p.CurrentBMI, 1)
	}

	minutes := StatCard{
		Key:   "total_minutes",
		Label: "총 운동시간",
		Value: format.Number(p.TotalMinutes, 0),
		Unit:  "분",
		Sub:   "4주 기준 예상 누적 운동시간",
		Icon:  "T",
	}

	return []StatCard{weight, bmi, minutes}
}
