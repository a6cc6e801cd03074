package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nationwide-haul/call-tracker/internal/model"
)

var (
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGreen  = lipgloss.Color("#00FF00")
	colorYellow = lipgloss.Color("#FFFF00")
	colorRed    = lipgloss.Color("#FF0000")
	colorGray   = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	cellStyle = lipgloss.NewStyle().PaddingRight(2)
)

type column struct {
	title string
	width int
}

var leaderboardColumns = []column{
	{"#", 3},
	{"Rep", 18},
	{"Division", 18},
	{"Calls", 6},
	{"Score", 6},
	{"Lead", 6},
	{"Qualified", 10},
	{"Trend", 12},
}

// scoreStyle colors a 0-10 score.
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 7:
		return cellStyle.Foreground(colorGreen)
	case score >= 5:
		return cellStyle.Foreground(colorYellow)
	default:
		return cellStyle.Foreground(colorRed)
	}
}

func trendLabel(t model.Trend) string {
	switch t {
	case model.TrendImproving:
		return "▲ improving"
	case model.TrendDeclining:
		return "▼ declining"
	default:
		return "= stable"
	}
}

func renderRow(cols []column, values []string, styles []lipgloss.Style) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		st := cellStyle
		if styles != nil && i < len(styles) {
			st = styles[i]
		}
		cells[i] = st.Width(c.width + 2).Render(truncate(values[i], c.width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// renderLeaderboard formats an analysis result as a ranked rep table
// followed by the overall rollup.
func renderLeaderboard(res *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Rep Leaderboard"))
	b.WriteString("\n\n")

	titles := make([]string, len(leaderboardColumns))
	headerStyles := make([]lipgloss.Style, len(leaderboardColumns))
	for i, c := range leaderboardColumns {
		titles[i] = c.title
		headerStyles[i] = headerStyle.PaddingRight(2)
	}
	b.WriteString(renderRow(leaderboardColumns, titles, headerStyles))
	b.WriteString("\n")

	for i, s := range res.RepSummaries {
		values := []string{
			fmt.Sprintf("%d", i+1),
			s.RepName,
			s.DivisionName,
			fmt.Sprintf("%d", s.TotalCalls),
			fmt.Sprintf("%.1f", s.AverageScore),
			fmt.Sprintf("%.1f", s.AverageLeadScore),
			fmt.Sprintf("%d", s.QualifiedLeads),
			trendLabel(s.Trend),
		}
		styles := make([]lipgloss.Style, len(values))
		for j := range styles {
			styles[j] = cellStyle
		}
		styles[4] = scoreStyle(s.AverageScore)
		styles[5] = scoreStyle(s.AverageLeadScore)
		b.WriteString(renderRow(leaderboardColumns, values, styles))
		b.WriteString("\n")
	}

	st := res.OverallStats
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Overall"))
	b.WriteString("\n")
	lines := []string{
		fmt.Sprintf("Scored calls:      %d of %d in file", st.TotalCalls, st.TotalInFile),
		fmt.Sprintf("Average score:     %.1f", st.AverageScore),
		fmt.Sprintf("Average lead:      %.1f", st.AverageLeadScore),
		fmt.Sprintf("Qualified leads:   %d", st.QualifiedLeads),
		fmt.Sprintf("Red flag calls:    %d", st.RedFlagCalls),
		fmt.Sprintf("Top performer:     %s", st.TopPerformer),
		fmt.Sprintf("Needs improvement: %s", st.NeedsImprovement),
		mutedStyle.Render(fmt.Sprintf("IVR calls: %d  Spam calls: %d", st.IVRCalls, st.SpamCalls)),
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	return b.String()
}

var extractionColumns = []column{
	{"Call", 10},
	{"Class", 12},
	{"Rep", 16},
	{"Caller", 18},
	{"Need", 36},
	{"Conf", 5},
}

// renderExtraction formats an extraction result as one row per call
// followed by the run stats.
func renderExtraction(res *model.ExtractionResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Extracted Calls"))
	b.WriteString("\n\n")

	titles := make([]string, len(extractionColumns))
	headerStyles := make([]lipgloss.Style, len(extractionColumns))
	for i, c := range extractionColumns {
		titles[i] = c.title
		headerStyles[i] = headerStyle.PaddingRight(2)
	}
	b.WriteString(renderRow(extractionColumns, titles, headerStyles))
	b.WriteString("\n")

	for _, c := range res.Calls {
		values := []string{
			c.Bronze.ID,
			string(c.Triage.Classification),
			orDash(model.Deref(c.Rep.Name)),
			orDash(model.Deref(c.Caller.Name)),
			orDash(c.CallContext.NeedSummary),
			fmt.Sprintf("%.2f", c.Validation.Confidence),
		}
		b.WriteString(renderRow(extractionColumns, values, nil))
		b.WriteString("\n")
	}

	st := res.Stats
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Stats"))
	b.WriteString("\n")
	lines := []string{
		fmt.Sprintf("Total calls:     %d", st.TotalCalls),
		fmt.Sprintf("Valid sales:     %d", st.ValidSales),
		fmt.Sprintf("IVR only:        %d", st.IVROnly),
		fmt.Sprintf("Spam:            %d", st.Spam),
		fmt.Sprintf("Incomplete:      %d", st.Incomplete),
		fmt.Sprintf("Success rate:    %d%%", st.ExtractionSuccessRate),
		fmt.Sprintf("Avg confidence:  %.2f", st.AvgConfidence),
		fmt.Sprintf("Reps:            %s", orDash(strings.Join(st.UniqueReps, ", "))),
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
