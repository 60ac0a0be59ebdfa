package effect

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fdg312/careview/internal/viewstate"
)

// AnchorLabel — подпись стартовой точки графика
const AnchorLabel = "현재"

// WeeklyPrediction — прогноз на одну неделю.
// PredictedWeght — устаревший ключ с опечаткой, который backend всё ещё отдаёт.
type WeeklyPrediction struct {
	Week            float64  `json:"week"`
	PredictedWeight *float64 `json:"predicted_weight,omitempty"`
	PredictedBMI    *float64 `json:"predicted_bmi,omitempty"`
	PredictedWeght  *float64 `json:"predicted_weght,omitempty"`
}

// PredictionPayload — ответ GET /api/expected-effect
type PredictionPayload struct {
	CurrentWeight        *float64           `json:"current_weight,omitempty"`
	CurrentBMI           *float64           `json:"current_bmi,omitempty"`
	TotalExerciseMinutes *float64           `json:"total_exercise_minutes,omitempty"`
	WeeklyPredictions    []WeeklyPrediction `json:"weekly_predictions"`

	// absent: тело было false, 0 или "", что backend использует вместо null
	absent bool
}

// IsAbsent reports whether there is no prediction at all: a nil payload
// or a falsy body.
func (p *PredictionPayload) IsAbsent() bool {
	return p == nil || p.absent
}

// ChartPoint — точка графика
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Projection — данные для карточек и графиков страницы ожидаемого эффекта.
// Скалярные поля сохраняют nil ("нет данных"), серии всегда числовые.
type Projection struct {
	PredictedWeight *float64     `json:"predicted_weight"`
	PredictedBMI    *float64     `json:"predicted_bmi"`
	CurrentWeight   *float64     `json:"current_weight"`
	CurrentBMI      *float64     `json:"current_bmi"`
	TotalMinutes    *float64     `json:"total_minutes"`
	WeightSeries    []ChartPoint `json:"weight_series"`
	BMISeries       []ChartPoint `json:"bmi_series"`
}

// StatCard — карточка "예상 변화"
type StatCard struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
	Sub   string `json:"sub,omitempty"`
	Icon  string `json:"icon"`
}

// View — ответ GET /v1/effect
type View struct {
	State        viewstate.Status `json:"state"`
	Message      string           `json:"message,omitempty"`
	Unauthorized bool             `json:"unauthorized,omitempty"`
	Projection   *Projection      `json:"projection"`
	Cards        []StatCard       `json:"cards"`
}

func (p *PredictionPayload) UnmarshalJSON(data []byte) error {
	*p = PredictionPayload{}
	if isFalsy(data) {
		p.absent = true
		return nil
	}
	obj, ok := asObject(data)
	if !ok {
		return nil
	}
	p.CurrentWeight = asNumber(obj["current_weight"])
	p.CurrentBMI = asNumber(obj["current_bmi"])
	p.TotalExerciseMinutes = asNumber(obj["total_exercise_minutes"])

	var items []json.RawMessage
	if err := json.Unmarshal(obj["weekly_predictions"], &items); err != nil {
		return nil
	}
	p.WeeklyPredictions = make([]WeeklyPrediction, 0, len(items))
	for _, item := range items {
		var w WeeklyPrediction
		_ = w.UnmarshalJSON(item)
		p.WeeklyPredictions = append(p.WeeklyPredictions, w)
	}
	return nil
}

// UnmarshalJSON never fails; a missing or non-numeric week becomes 0.
// Numbers sent as strings ("2", "78.5") are accepted.
func (w *WeeklyPrediction) UnmarshalJSON(data []byte) error {
	*w = WeeklyPrediction{}
	obj, ok := asObject(data)
	if !ok {
		return nil
	}
	if week := asNumber(obj["week"]); week != nil {
		w.Week = *week
	}
	w.PredictedWeight = asNumber(obj["predicted_weight"])
	w.PredictedBMI = asNumber(obj["predicted_bmi"])
	w.PredictedWeght = asNumber(obj["predicted_weght"])
	return nil
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// asNumber accepts a finite JSON number or a string holding one.
func asNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		text = strings.TrimSpace(str)
		if text == "" || !isNumeric(text) {
			return nil
		}
	} else if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// isNumeric отсекает то, что ParseFloat понимает, а JSON-клиенты нет:
// "Inf", "NaN", hex и подчёркивания.
func isNumeric(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c == '.', c == '-', c == '+', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return true
}

// isFalsy: false, 0 и "" означают отсутствие прогноза, как и null.
func isFalsy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "false", `""`:
		return true
	}
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return false
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	return err == nil && v == 0
}
