package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Niansi/baby-tracker/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	showSeconds bool
}

func newSettingsModel(s *store.Store) settingsModel {
	return settingsModel{store: s}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type settingsDataMsg struct {
	showSeconds bool
}

func (m settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{showSeconds: m.store.ShowSeconds()}
	}
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsDataMsg:
		m.showSeconds = msg.showSeconds
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Toggle):
			if err := m.store.SetShowSeconds(!m.showSeconds); err != nil {
				return m, errStatus(err)
			}
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m settingsModel) view() string {
	w := m.width - 4

	title := titleStyle.Render("设置")

	value := mutedStyle.Render("关")
	if m.showSeconds {
		value = successStyle.Render("开")
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %-24s %s", "关注页显示秒数", value))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter/space: 切换"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
