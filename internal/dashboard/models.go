package dashboard

import (
	"github.com/fdg312/careview/internal/viewstate"
)

// Ключи метрик дневной записи
const (
	MetricWeightKg              = "weight_kg"
	MetricSleepDurationHours    = "sleep_duration_hours"
	MetricExerciseDurationHours = "exercise_duration_hours"
)

// Metric — измерения за день. nil означает, что значение отсутствует
// или пришло не числом.
type Metric struct {
	WeightKg              *float64 `json:"weight_kg,omitempty"`
	SleepDurationHours    *float64 `json:"sleep_duration_hours,omitempty"`
	ExerciseDurationHours *float64 `json:"exercise_duration_hours,omitempty"`
}

// DailyRecord — одна дневная запись из записей за неделю.
// Metric == nil, если поле отсутствует, null или не объект.
type DailyRecord struct {
	Date   string  `json:"date"`
	Metric *Metric `json:"metric"`
}

// WeeklyRecords — записи за неделю, порядок не гарантирован.
type WeeklyRecords struct {
	DailyRecords []DailyRecord `json:"daily_records"`
}

// RecordPage — ответ upstream эндпоинта страницы записей.
type RecordPage struct {
	WeeklyRecords *WeeklyRecords `json:"weekly_records"`
}

// Days returns the daily records of the page, nil when there are none.
func (p *RecordPage) Days() []DailyRecord {
	if p == nil || p.WeeklyRecords == nil {
		return nil
	}
	return p.WeeklyRecords.DailyRecords
}

// Summary — производные серии и последние значения по метрикам.
type Summary struct {
	LatestWeight   *float64  `json:"latest_weight"`
	LatestSleep    *float64  `json:"latest_sleep"`
	LatestExercise *float64  `json:"latest_exercise"`
	WeightSeries   []float64 `json:"weight_series"`
	SleepSeries    []float64 `json:"sleep_series"`
	ExerciseSeries []float64 `json:"exercise_series"`
}

// MetricCard — карточка метрики на дашборде
type MetricCard struct {
	Key     string    `json:"key"`
	Title   string    `json:"title"`
	Unit    string    `json:"unit"`
	Value   *float64  `json:"value"`
	Display string    `json:"display"`
	Series  []float64 `json:"series"`
	Hint    string    `json:"hint"`
}

// View — ответ GET /v1/dashboard
type View struct {
	State        viewstate.Status `json:"state"`
	Message      string           `json:"message,omitempty"`
	Unauthorized bool             `json:"unauthorized,omitempty"`
	Summary      Summary          `json:"summary"`
	Cards        []MetricCard     `json:"cards"`
}
