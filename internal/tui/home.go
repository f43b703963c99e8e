package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Niansi/baby-tracker/internal/store"
	"github.com/Niansi/baby-tracker/internal/timefmt"
)

type homeModel struct {
	store  *store.Store
	width  int
	height int

	book       store.Book
	activities []store.BookActivity // visible only, in display order
	books      []store.Book
	cursor     int

	// Book picker state
	picking      bool
	pickerCursor int

	// Amount/minutes prompt for value and untimed duration activities
	formActive bool
	form       *huh.Form
	formValue  *string
	formTarget store.BookActivity
}

func newHomeModel(s *store.Store) homeModel {
	v := ""
	return homeModel{
		store:     s,
		formValue: &v,
	}
}

func (m homeModel) Init() tea.Cmd {
	return m.refresh()
}

func (m *homeModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type homeDataMsg struct {
	book       store.Book
	activities []store.BookActivity
	books      []store.Book
}

func (m homeModel) refresh() tea.Cmd {
	return func() tea.Msg {
		book := m.store.ActiveBook()
		var visible []store.BookActivity
		for _, ba := range m.store.BookActivities(book.ID) {
			if ba.Visible {
				visible = append(visible, ba)
			}
		}
		return homeDataMsg{
			book:       book,
			activities: visible,
			books:      m.store.Books(),
		}
	}
}

func (m homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case homeDataMsg:
		m.book = msg.book
		m.activities = msg.activities
		m.books = msg.books
		if m.cursor >= len(m.activities) {
			m.cursor = max(0, len(m.activities)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			return m.quickRecord()
		case key.Matches(msg, keys.Start):
			return m.startTimer()
		case key.Matches(msg, keys.Stop):
			return m.stopTimer()
		case key.Matches(msg, keys.Book):
			if len(m.books) > 1 {
				m.picking = true
				m.pickerCursor = 0
			}
		}
	}
	return m, nil
}

// quickRecord dispatches on the selected activity's kind: count activities log
// immediately, value and untimed duration activities prompt for a number, and
// timer activities toggle their timer.
func (m homeModel) quickRecord() (homeModel, tea.Cmd) {
	if m.cursor >= len(m.activities) {
		return m, nil
	}
	ba := m.activities[m.cursor]

	switch {
	case ba.Kind == store.KindCount:
		rec, err := m.store.AddRecord(store.Record{
			BookID:     m.book.ID,
			ActivityID: ba.ID,
			Kind:       ba.Kind,
			Value:      1,
			Unit:       ba.Unit,
		})
		if err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return recordAddedMsg{record: rec} })

	case ba.Kind == store.KindDuration && ba.HasLiveTimer:
		if m.store.TimerFor(m.book.ID, ba.ID).IsRunning {
			return m.stopTimer()
		}
		return m.startTimer()

	default:
		return m.showValueForm(ba)
	}
}

func (m homeModel) showValueForm(ba store.BookActivity) (homeModel, tea.Cmd) {
	*m.formValue = ""
	m.formTarget = ba

	title := fmt.Sprintf("%s %s", ba.Icon, ba.Name)
	prompt := fmt.Sprintf("数量 (%s)", ba.Unit)
	if ba.Kind == store.KindDuration {
		prompt = "时长 (分钟)"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(prompt).Description(title).Value(m.formValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m homeModel) updateForm(msg tea.Msg) (homeModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		v, err := strconv.ParseFloat(strings.TrimSpace(*m.formValue), 64)
		if err != nil || v <= 0 {
			return m, func() tea.Msg {
				return statusMsg{text: "无效的数值", isError: true}
			}
		}
		rec := store.Record{
			BookID:     m.book.ID,
			ActivityID: m.formTarget.ID,
			Kind:       m.formTarget.Kind,
			Value:      v,
			Unit:       m.formTarget.Unit,
		}
		if m.formTarget.Kind == store.KindDuration {
			rec.DurationMs = int64(v) * 60 * 1000
		}
		saved, err := m.store.AddRecord(rec)
		if err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return recordAddedMsg{record: saved} })
	}

	return m, cmd
}

func (m homeModel) startTimer() (homeModel, tea.Cmd) {
	if m.cursor >= len(m.activities) {
		return m, nil
	}
	ba := m.activities[m.cursor]
	if ba.Kind != store.KindDuration || !ba.HasLiveTimer {
		return m, nil
	}
	if err := m.store.StartTimer(m.book.ID, ba.ID); err != nil {
		return m, errStatus(err)
	}
	return m, func() tea.Msg { return timerStartedMsg{activity: ba.Activity} }
}

func (m homeModel) stopTimer() (homeModel, tea.Cmd) {
	if m.cursor >= len(m.activities) {
		return m, nil
	}
	ba := m.activities[m.cursor]
	ts := m.store.TimerFor(m.book.ID, ba.ID)
	if !ts.IsRunning {
		return m, nil
	}
	rec, err := m.store.StopTimer(m.book.ID, ba.ID, store.Elapsed(ts))
	if err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(
		m.refresh(),
		func() tea.Msg { return timerStoppedMsg{record: rec} },
	)
}

func (m homeModel) updatePicker(msg tea.KeyMsg) (homeModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickerCursor < len(m.books)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		b := m.books[m.pickerCursor]
		m.picking = false
		if err := m.store.SetActiveBook(b.ID); err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return booksChangedMsg{} })
	case key.Matches(msg, keys.Back):
		m.picking = false
	}
	return m, nil
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("错误: %v", err), isError: true}
	}
}

func (m homeModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("记一笔")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if m.picking {
		return m.renderBookPicker(w)
	}

	header := m.renderBookHeader()

	if len(m.activities) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("没有可见的活动，按 5 前往活动页添加。"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")
	for i, ba := range m.activities {
		rows = append(rows, m.renderActivityRow(i, ba))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: 记一笔  s/x: 计时  b: 换本子"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m homeModel) renderBookHeader() string {
	name := tokenStyle(m.book.Color).Bold(true).Render(m.book.Icon + " " + m.book.Name)
	age := ""
	if d := m.book.Age(timeNow()); d >= 0 {
		age = mutedStyle.Render(fmt.Sprintf("  第 %d 天", d+1))
	}
	return name + age
}

func (m homeModel) renderActivityRow(i int, ba store.BookActivity) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	label := fmt.Sprintf("%s %s", ba.Icon, ba.Name)
	mark := ""
	if ba.Highlighted {
		mark = accentStyle.Render(" ★")
	}

	status := ""
	ts := m.store.TimerFor(m.book.ID, ba.ID)
	switch {
	case ts.IsRunning:
		status = timerRunningStyle.Render("● " + timefmt.Clock(store.Elapsed(ts)))
	default:
		if last := m.store.LastRecord(m.book.ID, ba.ID); last != nil {
			ago := timefmt.DurationChinese(timeNow().Sub(last.StartTime))
			status = mutedStyle.Render(ago + "前")
		}
	}

	left := style.Render(cursor + label)
	if status == "" {
		return left + mark
	}
	pad := 28 - lipgloss.Width(cursor+label)
	if pad < 1 {
		pad = 1
	}
	return left + mark + strings.Repeat(" ", pad) + status
}

func (m homeModel) renderBookPicker(w int) string {
	title := titleStyle.Render("切换本子")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, b := range m.books {
		cursor := "  "
		style := normalItemStyle
		if i == m.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		active := ""
		if b.ID == m.book.ID {
			active = successStyle.Render(" ✓")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, b.Icon, b.Name))+active)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: 选择  esc: 取消"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
