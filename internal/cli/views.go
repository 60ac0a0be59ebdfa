package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fdg312/careview/internal/dashboard"
	"github.com/fdg312/careview/internal/effect"
	"github.com/fdg312/careview/internal/format"
	"github.com/fdg312/careview/internal/viewstate"
	"github.com/spf13/cobra"
)

func newDashboardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show weight, exercise and sleep for the last week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := opts.dashboardService().Load(cmd.Context(), opts.authorization())
			return opts.printDashboard(cmd.OutOrStdout(), view)
		},
	}
}

func newEffectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "effect",
		Short: "Show the expected change after four weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := opts.effectService().Load(cmd.Context(), opts.authorization())
			return opts.printEffect(cmd.OutOrStdout(), view)
		},
	}
}

func (o *options) printDashboard(w io.Writer, view dashboard.View) error {
	if o.jsonOut {
		return writeJSON(w, view)
	}
	st := newStyles(w)

	fprintln(w, st.title.Render("기록 대시보드"))
	if view.State != viewstate.StatusReady {
		fprintln(w, st.stateLine(view.State, view.Message))
		return nil
	}

	cards := make([]string, 0, len(view.Cards))
	for _, c := range view.Cards {
		body := st.value.Render(c.Display) + " " + st.muted.Render(c.Unit)
		if len(c.Series) > 0 {
			body += "\n" + st.muted.Render(sparkline(c.Series))
		}
		cards = append(cards, st.card.Render(st.label.Render(c.Title)+"\n"+body))
	}
	fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	if len(view.Cards) > 0 {
		fprintln(w, st.muted.Render(view.Cards[0].Hint))
	}
	return nil
}

func (o *options) printEffect(w io.Writer, view effect.View) error {
	if o.jsonOut {
		return writeJSON(w, view)
	}
	st := newStyles(w)

	fprintln(w, st.title.Render("4주 후 예상되는 변화"))
	if view.State != viewstate.StatusReady {
		fprintln(w, st.stateLine(view.State, view.Message))
		return nil
	}

	cards := make([]string, 0, len(view.Cards))
	for _, c := range view.Cards {
		body := st.value.Render(c.Value) + " " + st.muted.Render(c.Unit)
		if c.Sub != "" {
			body += "\n" + st.muted.Render(c.Sub)
		}
		cards = append(cards, st.card.Render(st.label.Render(c.Label)+"\n"+body))
	}
	fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))

	if p := view.Projection; p != nil {
		rows := make([]string, 0, len(p.WeightSeries))
		for i := range p.WeightSeries {
			weight := p.WeightSeries[i].Value
			bmi := p.BMISeries[i].Value
			rows = append(rows, padRight(p.WeightSeries[i].Label, 6)+
				padRight(format.Number(&weight, 1)+" kg", 10)+
				"BMI "+format.Number(&bmi, 1))
		}
		fprintln(w, st.table.Render(strings.Join(rows, "\n")))
	}
	return nil
}

type styles struct {
	title, label, value, muted, warn lipgloss.Style
	card, table                      lipgloss.Style
}

// newStyles binds styles to w so colours are dropped for non-terminals.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")).MarginBottom(1),
		label: r.NewStyle().Bold(true),
		value: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#7a8699")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a3850")).
			Padding(0, 1).
			MarginRight(1),
		table: r.NewStyle().MarginTop(1),
	}
}

func (s styles) stateLine(state viewstate.Status, message string) string {
	line := "[" + string(state) + "]"
	if message != "" {
		line += " " + message
	}
	return s.warn.Render(line)
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws series scaled between its own min and max.
func sparkline(series []float64) string {
	if len(series) == 0 {
		return ""
	}
	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(series))
	for i, v := range series {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s + " "
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
