package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Niansi/baby-tracker/internal/store"
	"github.com/Niansi/baby-tracker/internal/timefmt"
)

type analysisMode int

const (
	analysisCounts analysisMode = iota
	analysisTrend
	analysisHeatmap
)

var analysisModeNames = []string{"每日次数", "累计趋势", "时段分布"}

type analysisModel struct {
	store  *store.Store
	width  int
	height int

	mode    analysisMode
	offset  int // 7-day blocks back from today (0 = current)
	book    store.Book
	records []store.Record
	catalog map[string]store.Activity

	chart barchart.Model
	spark sparkline.Model
}

func newAnalysisModel(s *store.Store) analysisModel {
	return analysisModel{
		store: s,
		chart: barchart.New(60, 12),
		spark: sparkline.New(60, 8),
	}
}

func (m *analysisModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type analysisDataMsg struct {
	book    store.Book
	records []store.Record
	catalog map[string]store.Activity
}

func (m analysisModel) refresh() tea.Cmd {
	return func() tea.Msg {
		book := m.store.ActiveBook()
		from, to := m.dateRange()
		catalog := map[string]store.Activity{}
		for _, a := range m.store.Activities() {
			catalog[a.ID] = a
		}
		return analysisDataMsg{
			book:    book,
			records: m.store.RecordsByDateRange(book.ID, from, to),
			catalog: catalog,
		}
	}
}

func (m analysisModel) dateRange() (time.Time, time.Time) {
	end := timefmt.StartOfDay(timeNow()).AddDate(0, 0, -7*m.offset)
	start := end.AddDate(0, 0, -6)
	return start, end
}

func (m analysisModel) update(msg tea.Msg) (analysisModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisDataMsg:
		m.book = msg.book
		m.records = msg.records
		m.catalog = msg.catalog
		m.buildCharts()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Tab):
			m.mode = (m.mode + 1) % 3
			m.buildCharts()
			return m, nil
		}
	}
	return m, nil
}

func (m *analysisModel) buildCharts() {
	switch m.mode {
	case analysisCounts:
		m.buildCountChart()
	case analysisTrend:
		m.buildTrendChart()
	}
}

func (m *analysisModel) buildCountChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	from, to := m.dateRange()
	counts := map[string]map[string]int{}
	for _, r := range m.records {
		day := timefmt.DayKey(r.StartTime)
		if counts[day] == nil {
			counts[day] = map[string]int{}
		}
		counts[day][r.ActivityID]++
	}

	var bars []barchart.BarData
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := timefmt.DayKey(d)
		label := d.Format("01-02")

		var values []barchart.BarValue
		for id, n := range counts[day] {
			a := m.activityFor(id)
			values = append(values, barchart.BarValue{
				Name:  a.Name,
				Value: float64(n),
				Style: tokenStyle(a.Color),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m *analysisModel) buildTrendChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	m.spark = sparkline.New(chartWidth, 8)

	from, to := m.dateRange()
	points := store.CumulativeTrend(m.records, store.KindValue, from, to)
	for _, p := range points {
		sum := 0.0
		for _, v := range p.Totals {
			sum += v
		}
		m.spark.Push(sum)
	}
	m.spark.Draw()
}

func (m analysisModel) view() string {
	w := m.width - 4

	var tabs []string
	for i, name := range analysisModeNames {
		if analysisMode(i) == m.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	from, to := m.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("01-02"), to.Format("01-02")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("分析"), "  ", modeTabs, "  ", dateLabel,
	)

	var body string
	switch m.mode {
	case analysisCounts:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.chart.View(), "", m.renderLegend(), "", m.renderStatsTable(w),
		)
	case analysisTrend:
		body = lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render("  累计喂养量 (ml)"), m.spark.View(), "", m.renderTrendTable(),
		)
	case analysisHeatmap:
		body = m.renderHeatmap()
	}

	nav := mutedStyle.Render("  ←/→: 翻页  tab: 切换图表")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (m analysisModel) renderLegend() string {
	seen := map[string]bool{}
	var items []string
	for _, r := range m.records {
		if seen[r.ActivityID] {
			continue
		}
		seen[r.ActivityID] = true
		a := m.activityFor(r.ActivityID)
		dot := tokenStyle(a.Color).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, a.Name))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}

func (m analysisModel) renderStatsTable(w int) string {
	if len(m.records) == 0 {
		return mutedStyle.Render("  这段时间没有记录")
	}

	stats := store.PerActivityStats(m.records)

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-14s %6s %12s", "活动", "次数", "总量"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 40))))

	for _, ba := range m.store.BookActivities(m.book.ID) {
		st, ok := stats[ba.ID]
		if !ok {
			continue
		}
		total := "-"
		switch ba.Kind {
		case store.KindDuration:
			total = timefmt.DurationChinese(time.Duration(st.TotalDurationMs) * time.Millisecond)
		case store.KindValue:
			total = store.FormatValue(st.TotalValue) + " " + ba.Unit
		}
		dot := tokenStyle(ba.Color).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-12s %6d %12s", dot, ba.Name, st.Count, total))
	}

	return strings.Join(rows, "\n")
}

func (m analysisModel) renderTrendTable() string {
	from, to := m.dateRange()
	points := store.CumulativeTrend(m.records, store.KindValue, from, to)
	if len(points) == 0 {
		return mutedStyle.Render("  这段时间没有记录")
	}

	var rows []string
	for _, p := range points {
		sum := 0.0
		for _, v := range p.Totals {
			sum += v
		}
		rows = append(rows, fmt.Sprintf("  %s  %s", mutedStyle.Render(p.Date), highlightStyle.Render(store.FormatValue(sum))))
	}
	return strings.Join(rows, "\n")
}

// renderHeatmap draws a 24-column hour-of-day histogram with block glyphs,
// aggregated over the selected week.
func (m analysisModel) renderHeatmap() string {
	buckets := store.HourlyHeatmap(m.records)

	totals := make([]int, 24)
	peak := 0
	for h := range buckets {
		for _, n := range buckets[h] {
			totals[h] += n
		}
		if totals[h] > peak {
			peak = totals[h]
		}
	}
	if peak == 0 {
		return mutedStyle.Render("  这段时间没有记录")
	}

	glyphs := []string{" ", "░", "▒", "▓", "█"}
	var cells []string
	for h := 0; h < 24; h++ {
		level := 0
		if totals[h] > 0 {
			level = 1 + totals[h]*3/peak
			if level > 4 {
				level = 4
			}
		}
		cells = append(cells, highlightStyle.Render(glyphs[level]))
	}

	axis := "  0     6     12    18    23"
	var rows []string
	rows = append(rows, mutedStyle.Render("  各时段记录密度"))
	rows = append(rows, "")
	rows = append(rows, "  "+strings.Join(cells, ""))
	rows = append(rows, mutedStyle.Render(axis))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  最高峰: %s 时 (%d 条)", peakHour(totals), peak))
	return strings.Join(rows, "\n")
}

func peakHour(totals []int) string {
	best := 0
	for h, n := range totals {
		if n > totals[best] {
			best = h
		}
	}
	return fmt.Sprintf("%d", best)
}

func (m analysisModel) activityFor(id string) store.Activity {
	if a, ok := m.catalog[id]; ok {
		return a
	}
	return store.Activity{ID: id, Name: "未知活动", Icon: "❓", Color: "gray"}
}
