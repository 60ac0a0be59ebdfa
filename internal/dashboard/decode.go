package dashboard

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Декодирование толерантно к мусору: записи приходят из формы ввода,
// поэтому ни одно поле не может уронить весь ответ.

func (p *RecordPage) UnmarshalJSON(data []byte) error {
	*p = RecordPage{}
	obj, ok := asObject(data)
	if !ok {
		return nil
	}
	if raw, ok := obj["weekly_records"]; ok {
		var wr WeeklyRecords
		if _, isObj := asObject(raw); isObj {
			_ = wr.UnmarshalJSON(raw)
			p.WeeklyRecords = &wr
		}
	}
	return nil
}

func (w *WeeklyRecords) UnmarshalJSON(data []byte) error {
	*w = WeeklyRecords{}
	obj, ok := asObject(data)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(obj["daily_records"], &items); err != nil {
		return nil
	}
	w.DailyRecords = make([]DailyRecord, 0, len(items))
	for _, item := range items {
		var d DailyRecord
		_ = d.UnmarshalJSON(item)
		w.DailyRecords = append(w.DailyRecords, d)
	}
	return nil
}

func (d *DailyRecord) UnmarshalJSON(data []byte) error {
	*d = DailyRecord{}
	obj, ok := asObject(data)
	if !ok {
		return nil
	}
	d.Date = dateString(obj["date"])
	if raw, ok := obj["metric"]; ok {
		if m, isObj := asObject(raw); isObj {
			d.Metric = &Metric{
				WeightKg:              asNumber(m[MetricWeightKg]),
				SleepDurationHours:    asNumber(m[MetricSleepDurationHours]),
				ExerciseDurationHours: asNumber(m[MetricExerciseDurationHours]),
			}
		}
	}
	return nil
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	*m = Metric{}
	obj, ok := asObject(data)
	if !ok {
		return nil
	}
	m.WeightKg = asNumber(obj[MetricWeightKg])
	m.SleepDurationHours = asNumber(obj[MetricSleepDurationHours])
	m.ExerciseDurationHours = asNumber(obj[MetricExerciseDurationHours])
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

// asNumber accepts only a JSON number with a finite value.
// Strings like "70" are not numbers.
func asNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return nil
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// dateString приводит date к строке. Строка берётся как есть,
// ненулевое число и true превращаются в текст, остальное даёт "".
func dateString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case 't':
		if string(raw) == "true" {
			return "true"
		}
		return ""
	}
	if v := asNumber(raw); v != nil && *v != 0 {
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return ""
}
