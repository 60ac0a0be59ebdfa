package dashboard

import (
	"cmp"
	"math"
	"sort"

	"github.com/fdg312/careview/internal/coalesce"
)

// Derive builds per-metric series and latest values from a week of records.
//
// Records are ordered by their raw date string; records sharing a date are
// ordered by their metric values, so any permutation of the same records
// yields the same Summary. A day without metric contributes nothing, and a
// missing or non-finite field is dropped for that metric only.
func Derive(days []DailyRecord) Summary {
	if len(days) == 0 {
		return emptySummary()
	}

	sorted := sortByDate(days)

	weight := buildSeries(sorted, func(m *Metric) *float64 { return m.WeightKg })
	sleep := buildSeries(sorted, func(m *Metric) *float64 { return m.SleepDurationHours })
	exercise := buildSeries(sorted, func(m *Metric) *float64 { return m.ExerciseDurationHours })

	return Summary{
		LatestWeight:   coalesce.Last(weight),
		LatestSleep:    coalesce.Last(sleep),
		LatestExercise: coalesce.Last(exercise),
		WeightSeries:   weight,
		SleepSeries:    sleep,
		ExerciseSeries: exercise,
	}
}

func emptySummary() Summary {
	return Summary{
		WeightSeries:   []float64{},
		SleepSeries:    []float64{},
		ExerciseSeries: []float64{},
	}
}

// normalized guarantees non-nil series so that JSON renders [] not null.
func (s Summary) normalized() Summary {
	if s.WeightSeries == nil {
		s.WeightSeries = []float64{}
	}
	if s.SleepSeries == nil {
		s.SleepSeries = []float64{}
	}
	if s.ExerciseSeries == nil {
		s.ExerciseSeries = []float64{}
	}
	return s
}

func sortByDate(days []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, len(days))
	copy(out, days)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return compareMetrics(out[i].Metric, out[j].Metric) < 0
	})
	return out
}

// compareMetrics orders records of the same date field by field. Records
// that compare equal contribute identical values to every series.
func compareMetrics(a, b *Metric) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if c := compareValue(a.WeightKg, b.WeightKg); c != 0 {
		return c
	}
	if c := compareValue(a.SleepDurationHours, b.SleepDurationHours); c != 0 {
		return c
	}
	return compareValue(a.ExerciseDurationHours, b.ExerciseDurationHours)
}

// compareValue: absent and non-finite values are the same "no value",
// which sorts before any finite value.
func compareValue(a, b *float64) int {
	fa, fb := isFinite(a), isFinite(b)
	switch {
	case !fa && !fb:
		return 0
	case !fa:
		return -1
	case !fb:
		return 1
	}
	if *a != *b {
		return cmp.Compare(*a, *b)
	}
	// -0 и 0 равны, но в сериях различимы
	sa, sb := math.Signbit(*a), math.Signbit(*b)
	switch {
	case sa == sb:
		return 0
	case sa:
		return -1
	default:
		return 1
	}
}

func buildSeries(sorted []DailyRecord, selector func(*Metric) *float64) []float64 {
	series := make([]float64, 0, len(sorted))
	for _, d := range sorted {
		if d.Metric == nil {
			continue
		}
		if v := selector(d.Metric); isFinite(v) {
			series = append(series, *v)
		}
	}
	return series
}
