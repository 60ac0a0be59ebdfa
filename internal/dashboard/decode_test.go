package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRecordTolerantDecode(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		date   string
		metric *Metric
	}{
		{"full", `{"date":"2024-01-01","metric":{"weight_kg":70.2}}`, "2024-01-01", &Metric{WeightKg: f(70.2)}},
		{"metric null", `{"date":"2024-01-01","metric":null}`, "2024-01-01", nil},
		{"metric string", `{"date":"2024-01-01","metric":"x"}`, "2024-01-01", nil},
		{"string number", `{"date":"d","metric":{"weight_kg":"70"}}`, "d", &Metric{}},
		{"bool field", `{"date":"d","metric":{"exercise_duration_hours":false}}`, "d", &Metric{}},
		{"numeric date", `{"date":20240101}`, "20240101", nil},
		{"zero date", `{"date":0}`, "", nil},
		{"true date", `{"date":true}`, "true", nil},
		{"false date", `{"date":false}`, "", nil},
		{"object date", `{"date":{"y":2024}}`, "", nil},
		{"not an object", `42`, "", nil},
		{"null", `null`, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DailyRecord
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))
			assert.Equal(t, tt.date, d.Date)
			assert.Equal(t, tt.metric, d.Metric)
		})
	}
}

func TestRecordPageDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		days int
	}{
		{"records", `{"weekly_records":{"daily_records":[{"date":"a"},{"date":"b"}]}}`, 2},
		{"weekly null", `{"weekly_records":null}`, 0},
		{"weekly missing", `{}`, 0},
		{"weekly not object", `{"weekly_records":[1]}`, 0},
		{"daily not array", `{"weekly_records":{"daily_records":"x"}}`, 0},
		{"garbage items", `{"weekly_records":{"daily_records":[1,"x",null,{"date":"a"}]}}`, 4},
		{"top-level array", `[1,2]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p RecordPage
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			assert.Len(t, p.Days(), tt.days)
		})
	}

	var nilPage *RecordPage
	assert.Nil(t, nilPage.Days())
}
