package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Niansi/baby-tracker/internal/store"
)

// After this long without a keypress on the home view, the reminder overlay
// takes over the screen.
const inactivityTimeout = 10 * time.Second

// reminderModel is the inactivity watchdog plus the takeover overlay it
// triggers: a glanceable card per highlighted activity, ticking live while a
// timer runs. Any keypress dismisses it and re-arms the watchdog.
type reminderModel struct {
	store  *store.Store
	width  int
	height int

	active    bool
	lastInput time.Time
}

func newReminderModel(s *store.Store) reminderModel {
	return reminderModel{
		store:     s,
		lastInput: timeNow(),
	}
}

func (m *reminderModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// recordInput resets the inactivity clock and dismisses an active overlay.
// Returns true when a keypress was consumed by the overlay, so the caller
// should not route it further.
func (m *reminderModel) recordInput() bool {
	m.lastInput = timeNow()
	if m.active {
		m.active = false
		return true
	}
	return false
}

// maybeTrigger arms on ticks, but only while the home view is showing and at
// least one highlighted activity has something to say.
func (m *reminderModel) maybeTrigger(onHome bool) {
	if m.active || !onHome {
		return
	}
	if timeNow().Sub(m.lastInput) < inactivityTimeout {
		return
	}
	if !m.store.HasReminderData() {
		return
	}
	m.active = true
}

// teardown disarms the watchdog when the user navigates off the home view.
func (m *reminderModel) teardown() {
	m.active = false
	m.lastInput = timeNow()
}

func (m reminderModel) view() string {
	w := m.width - 4

	book := m.store.ActiveBook()
	title := titleStyle.Render(book.Icon + " " + book.Name)

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, r := range m.store.Reminders() {
		rows = append(rows, m.renderReminder(r)...)
		rows = append(rows, "")
	}

	rows = append(rows, mutedStyle.Render("  按任意键返回"))

	card := activePanelStyle.Width(min(w, 48)).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

func (m reminderModel) renderReminder(r store.Reminder) []string {
	name := tokenStyle(r.Activity.Color).Bold(true).Render(r.Activity.Icon + " " + r.Activity.Name)

	switch {
	case r.Live:
		return []string{
			"  " + name,
			"  " + timerRunningStyle.Render("正在进行 · "+r.FormattedTime),
		}
	case r.NoRecord:
		return []string{
			"  " + name,
			"  " + mutedStyle.Render(r.FormattedTime),
		}
	default:
		line := "上次 · " + r.FormattedTime + "前"
		if r.Description != "" {
			line += " · " + r.Description
		}
		return []string{
			"  " + name,
			"  " + highlightStyle.Render(line),
		}
	}
}
