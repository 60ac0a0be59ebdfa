package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/careview/internal/dashboard"
	"github.com/fdg312/careview/internal/effect"
	"github.com/fdg312/careview/internal/viewstate"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardLoader loads one dashboard view. *dashboard.Service implements it.
type DashboardLoader interface {
	Load(ctx context.Context, authorization string) dashboard.View
}

// EffectLoader loads one effect view. *effect.Service implements it.
type EffectLoader interface {
	Load(ctx context.Context, authorization string) effect.View
}

// Generator generates PDF/CSV reports
type Generator struct {
	dashboard DashboardLoader
	effect    EffectLoader
	fontPath  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerator creates a new report generator. fontPath points to a TTF
// with Hangul glyphs; without it PDFs fall back to Helvetica and English labels.
func NewGenerator(dashboardLoader DashboardLoader, effectLoader EffectLoader, fontPath string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		dashboard: dashboardLoader,
		effect:    effectLoader,
		fontPath:  fontPath,
		logger:    logger,
		now:       time.Now,
	}
}

// Collect loads the views a report of the given kind needs. For KindAll
// both views are fetched concurrently.
func (g *Generator) Collect(ctx context.Context, kind, authorization string) (*Snapshot, error) {
	snap := &Snapshot{Kind: kind, GeneratedAt: g.now()}

	eg, egCtx := errgroup.WithContext(ctx)
	if kind == KindDashboard || kind == KindAll {
		eg.Go(func() error {
			v := g.dashboard.Load(egCtx, authorization)
			snap.Dashboard = &v
			return exportable(KindDashboard, v.State, v.Message)
		})
	}
	if kind == KindEffect || kind == KindAll {
		eg.Go(func() error {
			v := g.effect.Load(egCtx, authorization)
			snap.Effect = &v
			return exportable(KindEffect, v.State, v.Message)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

// exportable: ready and unavailable views carry a definite answer,
// everything else has nothing to put into a file.
func exportable(kind string, state viewstate.Status, message string) error {
	switch state {
	case viewstate.StatusReady, viewstate.StatusUnavailable:
		return nil
	}
	return &ViewNotReadyError{Kind: kind, State: string(state), Message: message}
}

// State summarises the view states of a snapshot.
func (s *Snapshot) State() string {
	states := make([]viewstate.Status, 0, 2)
	if s.Dashboard != nil {
		states = append(states, s.Dashboard.State)
	}
	if s.Effect != nil {
		states = append(states, s.Effect.State)
	}
	if len(states) == 1 {
		return string(states[0])
	}
	for _, st := range states {
		if st != viewstate.StatusReady {
			return "partial"
		}
	}
	return string(viewstate.StatusReady)
}

// Render encodes the snapshot in the requested format.
func (g *Generator) Render(snap *Snapshot, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return g.generateCSV(snap)
	case FormatPDF:
		return g.generatePDF(snap)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// generateCSV writes one row per value: section, series, label, value.
// Absent values are written as empty cells.
func (g *Generator) generateCSV(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"section", "series", "label", "value"}); err != nil {
		return nil, err
	}

	var rows [][]string
	if v := snap.Dashboard; v != nil {
		s := v.Summary
		rows = append(rows,
			[]string{"dashboard", dashboard.MetricWeightKg, "latest", csvValue(s.LatestWeight)},
			[]string{"dashboard", dashboard.MetricSleepDurationHours, "latest", csvValue(s.LatestSleep)},
			[]string{"dashboard", dashboard.MetricExerciseDurationHours, "latest", csvValue(s.LatestExercise)},
		)
		rows = appendSeries(rows, dashboard.MetricWeightKg, s.WeightSeries)
		rows = appendSeries(rows, dashboard.MetricSleepDurationHours, s.SleepSeries)
		rows = appendSeries(rows, dashboard.MetricExerciseDurationHours, s.ExerciseSeries)
	}

	if v := snap.Effect; v != nil {
		if p := v.Projection; p != nil {
			rows = append(rows,
				[]string{"effect", "predicted_weight", "", csvValue(p.PredictedWeight)},
				[]string{"effect", "predicted_bmi", "", csvValue(p.PredictedBMI)},
				[]string{"effect", "current_weight", "", csvValue(p.CurrentWeight)},
				[]string{"effect", "current_bmi", "", csvValue(p.CurrentBMI)},
				[]string{"effect", "total_minutes", "", csvValue(p.TotalMinutes)},
			)
			for _, pt := range p.WeightSeries {
				rows = append(rows, []string{"effect", "weight_series", pt.Label, formatFloat(pt.Value)})
			}
			for _, pt := range p.BMISeries {
				rows = append(rows, []string{"effect", "bmi_series", pt.Label, formatFloat(pt.Value)})
			}
		} else {
			rows = append(rows, []string{"effect", "state", "", string(v.State)})
		}
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendSeries(rows [][]string, name string, series []float64) [][]string {
	for i, v := range series {
		rows = append(rows, []string{"dashboard", name, strconv.Itoa(i + 1), formatFloat(v)})
	}
	return rows
}

func csvValue(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// pdfText — подписи PDF. Hangul нужен TTF, поэтому есть английский вариант.
type pdfText struct {
	title, generated, dashboard, effect, unavailable string
	week, weight, bmi                                string
	cardTitles                                       map[string]string
	anchor                                           func(label string) string
}

var koreanText = pdfText{
	title:       "Care View 리포트",
	generated:   "생성 시각",
	dashboard:   "대시보드 (최근 1주 기록)",
	effect:      "4주 후 예상되는 변화",
	unavailable: "아직 기대 효과를 계산할 데이터가 없어요.",
	week:        "주차",
	weight:      "체중 (kg)",
	bmi:         "BMI",
	anchor:      func(label string) string { return label },
}

var englishText = pdfText{
	title:       "Care View report",
	generated:   "Generated at",
	dashboard:   "Dashboard (last 7 days)",
	effect:      "Expected change in 4 weeks",
	unavailable: "No prediction available yet.",
	week:        "Week",
	weight:      "Weight (kg)",
	bmi:         "BMI",
	cardTitles: map[string]string{
		dashboard.MetricWeightKg:              "Weight",
		dashboard.MetricExerciseDurationHours: "Exercise",
		dashboard.MetricSleepDurationHours:    "Sleep",
		"weight":                              "Predicted weight",
		"bmi":                                 "Predicted BMI",
		"total_minutes":                       "Total exercise",
	},
	anchor: asciiWeekLabel,
}

// asciiWeekLabel: "현재" → "Now", "2주" → "2"
func asciiWeekLabel(label string) string {
	if label == effect.AnchorLabel {
		return "Now"
	}
	return strings.TrimSuffix(label, "주")
}

func (t pdfText) card(key, fallback string) string {
	if t.cardTitles == nil {
		return fallback
	}
	if s, ok := t.cardTitles[key]; ok {
		return s
	}
	return key
}

func asciiUnit(unit string) string {
	if unit == "분" {
		return "min"
	}
	return unit
}

func (g *Generator) generatePDF(snap *Snapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")

	fontName, text := g.loadFont(pdf)
	unit := func(u string) string { return u }
	if fontName == "Helvetica" {
		unit = asciiUnit
	}

	pdf.AddPage()

	pdf.SetFont(fontName, "", 16)
	pdf.Cell(0, 10, text.title)
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s: %s", text.generated, snap.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	if v := snap.Dashboard; v != nil {
		pdf.SetFont(fontName, "", 14)
		pdf.Cell(0, 8, text.dashboard)
		pdf.Ln(10)

		pdf.SetFont(fontName, "", 10)
		for _, c := range v.Cards {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %s %s", text.card(c.Key, c.Title), c.Display, unit(c.Unit)))
			pdf.Ln(5)
			if len(c.Series) > 0 {
				values := make([]string, len(c.Series))
				for i, s := range c.Series {
					values[i] = formatFloat(s)
				}
				pdf.Cell(0, 6, "  "+strings.Join(values, ", "))
				pdf.Ln(5)
			}
		}
		pdf.Ln(8)
	}

	if v := snap.Effect; v != nil {
		pdf.SetFont(fontName, "", 14)
		pdf.Cell(0, 8, text.effect)
		pdf.Ln(10)

		pdf.SetFont(fontName, "", 10)
		if v.Projection == nil {
			pdf.Cell(0, 6, text.unavailable)
			pdf.Ln(6)
		} else {
			for _, c := range v.Cards {
				line := fmt.Sprintf("%s: %s %s", text.card(c.Key, c.Label), c.Value, unit(c.Unit))
				if c.Sub != "" && fontName != "Helvetica" {
					line += "  (" + c.Sub + ")"
				}
				pdf.Cell(0, 6, strings.TrimSpace(line))
				pdf.Ln(5)
			}
			pdf.Ln(5)
			g.drawProjectionTable(pdf, v.Projection, fontName, text)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// drawProjectionTable draws week | weight | bmi rows
func (g *Generator) drawProjectionTable(pdf *gofpdf.Fpdf, p *effect.Projection, fontName string, text pdfText) {
	pdf.SetFont(fontName, "", 9)

	pdf.CellFormat(30, 6, text.week, "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, text.weight, "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, text.bmi, "1", 1, "C", false, 0, "")

	for i := range p.WeightSeries {
		pdf.CellFormat(30, 6, text.anchor(p.WeightSeries[i].Label), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, strconv.FormatFloat(p.WeightSeries[i].Value, 'f', 1, 64), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, strconv.FormatFloat(p.BMISeries[i].Value, 'f', 1, 64), "1", 1, "C", false, 0, "")
	}
}

// loadFont registers the configured UTF-8 font, falling back to Helvetica.
func (g *Generator) loadFont(pdf *gofpdf.Fpdf) (fontName string, text pdfText) {
	fontName, text = "Helvetica", englishText
	if g.fontPath == "" {
		return fontName, text
	}

	data, err := os.ReadFile(g.fontPath)
	if err != nil {
		g.logger.Warn("report font unavailable, using Helvetica", zap.String("path", g.fontPath), zap.Error(err))
		return fontName, text
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn("report font rejected, using Helvetica", zap.Any("panic", r))
			pdf.ClearError()
			fontName, text = "Helvetica", englishText
		}
	}()

	pdf.AddUTF8FontFromBytes("CareViewSans", "", data)
	if pdf.Err() {
		g.logger.Warn("report font rejected, using Helvetica", zap.Error(pdf.Error()))
		pdf.ClearError()
		return fontName, text
	}
	return "CareViewSans", koreanText
}
