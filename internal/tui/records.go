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

type recordsModel struct {
	store  *store.Store
	width  int
	height int

	book    store.Book
	records []store.Record
	catalog map[string]store.Activity
	cursor  int

	formActive bool
	form       *huh.Form
	formValue  *string
	editing    store.Record
}

func newRecordsModel(s *store.Store) recordsModel {
	v := ""
	return recordsModel{
		store:     s,
		formValue: &v,
	}
}

func (m *recordsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type recordsDataMsg struct {
	book    store.Book
	records []store.Record
	catalog map[string]store.Activity
}

func (m recordsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		book := m.store.ActiveBook()
		catalog := map[string]store.Activity{}
		for _, a := range m.store.Activities() {
			catalog[a.ID] = a
		}
		return recordsDataMsg{
			book:    book,
			records: m.store.RecordsForBook(book.ID),
			catalog: catalog,
		}
	}
}

func (m recordsModel) update(msg tea.Msg) (recordsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case recordsDataMsg:
		m.book = msg.book
		m.records = msg.records
		m.catalog = msg.catalog
		if m.cursor >= len(m.records) {
			m.cursor = max(0, len(m.records)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if len(m.records) > 0 {
				r := m.records[m.cursor]
				// Count records have no amount to edit.
				if r.Kind == store.KindCount {
					return m, func() tea.Msg {
						return statusMsg{text: "次数记录没有可编辑的数值", isError: false}
					}
				}
				return m.showEditForm(r)
			}
		case key.Matches(msg, keys.Delete):
			if len(m.records) > 0 {
				if err := m.store.DeleteRecord(m.records[m.cursor].ID); err != nil {
					return m, errStatus(err)
				}
				return m, tea.Batch(m.refresh(), func() tea.Msg { return recordChangedMsg{} })
			}
		}
	}
	return m, nil
}

func (m recordsModel) showEditForm(r store.Record) (recordsModel, tea.Cmd) {
	*m.formValue = store.FormatValue(r.Value)
	m.editing = r

	a := m.activityFor(r.ActivityID)
	prompt := fmt.Sprintf("数量 (%s)", r.Unit)
	if r.Kind == store.KindDuration {
		prompt = "时长 (分钟)"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(prompt).
				Description(fmt.Sprintf("%s %s", a.Icon, a.Name)).
				Value(m.formValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m recordsModel) updateForm(msg tea.Msg) (recordsModel, tea.Cmd) {
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
		if err != nil || v < 0 {
			return m, func() tea.Msg {
				return statusMsg{text: "无效的数值", isError: true}
			}
		}
		r := m.editing
		r.Value = v
		if r.Kind == store.KindDuration {
			r.DurationMs = int64(v) * 60 * 1000
		}
		if err := m.store.UpdateRecord(r); err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return recordChangedMsg{} })
	}

	return m, cmd
}

func (m recordsModel) activityFor(id string) store.Activity {
	if a, ok := m.catalog[id]; ok {
		return a
	}
	return store.Activity{ID: id, Name: "未知活动", Icon: "❓", Color: "gray"}
}

func (m recordsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("编辑记录")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("%s %s 的记录", m.book.Icon, m.book.Name))

	if len(m.records) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("暂无记录"),
		)
		return panelStyle.Width(w).Render(content)
	}

	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.records))

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	lastDay := ""
	for i := start; i < end; i++ {
		r := m.records[i]
		day := timefmt.DayKey(r.StartTime)
		if day != lastDay {
			rows = append(rows, mutedStyle.Render("  "+day))
			lastDay = day
		}
		rows = append(rows, m.renderRecordRow(i, r))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  e/enter: 编辑  d: 删除"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m recordsModel) renderRecordRow(i int, r store.Record) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	a := m.activityFor(r.ActivityID)
	when := r.StartTime.Local().Format("15:04")

	detail := store.FormatValue(r.Value) + " " + r.Unit
	if r.Kind == store.KindDuration {
		detail = timefmt.DurationChinese(r.Duration())
	}

	label := fmt.Sprintf("%s%s  %s %s", cursor, when, a.Icon, a.Name)
	pad := 26 - lipgloss.Width(label)
	if pad < 1 {
		pad = 1
	}
	return style.Render(label) + strings.Repeat(" ", pad) + highlightStyle.Render(detail)
}
