package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Niansi/baby-tracker/internal/export"
	"github.com/Niansi/baby-tracker/internal/store"
	"github.com/Niansi/baby-tracker/internal/timefmt"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	home       homeModel
	records    recordsModel
	analysis   analysisModel
	books      booksModel
	activities activitiesModel
	settings   settingsModel
	reminder   reminderModel

	help   help.Model
	status string
}

func NewApp(s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		activeView: viewHome,
		home:       newHomeModel(s),
		records:    newRecordsModel(s),
		analysis:   newAnalysisModel(s),
		books:      newBooksModel(s),
		activities: newActivitiesModel(s),
		settings:   newSettingsModel(s),
		reminder:   newReminderModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.home.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.home.setSize(a.width, contentHeight)
		a.records.setSize(a.width, contentHeight)
		a.analysis.setSize(a.width, contentHeight)
		a.books.setSize(a.width, contentHeight)
		a.activities.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.reminder.setSize(a.width, a.height)
		return a, nil

	case tea.KeyMsg:
		// The reminder overlay eats the keypress that dismisses it; every
		// keypress re-arms the inactivity watchdog.
		if a.reminder.recordInput() {
			return a, nil
		}

		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewHome)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewRecords)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewAnalysis)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewBooks)
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewActivities)
		case key.Matches(msg, keys.Tab6):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			if a.activeView != viewAnalysis {
				return a.switchView((a.activeView + 1) % 6)
			}
		}

	case tickMsg:
		a.reminder.maybeTrigger(a.activeView == viewHome)
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case timerStartedMsg:
		a.status = fmt.Sprintf("%s 开始计时", msg.activity.Name)
		return a, nil

	case timerStoppedMsg:
		if msg.record != nil {
			a.status = fmt.Sprintf("已记录 %s", timefmt.DurationChinese(msg.record.Duration()))
		}
		return a, nil

	case recordAddedMsg:
		a.status = "已记录"
		return a, nil

	case booksChangedMsg, recordChangedMsg, configChangedMsg:
		var cmd tea.Cmd
		a, cmd = a.updateActiveViewApp(msg)
		return a, tea.Batch(cmd, a.refreshCurrentView())

	case exportDoneMsg:
		a.status = "已导出到 " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	if a.activeView == viewHome && v != viewHome {
		a.reminder.teardown()
	}
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.updateActiveViewApp(msg)
	return model, cmd
}

func (a App) updateActiveViewApp(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewHome:
		a.home, cmd = a.home.update(msg)
	case viewRecords:
		a.records, cmd = a.records.update(msg)
	case viewAnalysis:
		a.analysis, cmd = a.analysis.update(msg)
	case viewBooks:
		a.books, cmd = a.books.update(msg)
	case viewActivities:
		a.activities, cmd = a.activities.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewHome:
		return a.home.formActive || a.home.picking
	case viewRecords:
		return a.records.formActive
	case viewBooks:
		return a.books.formActive
	case viewActivities:
		return a.activities.formActive || a.activities.attaching
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewHome:
		return a.home.refresh()
	case viewRecords:
		return a.records.refresh()
	case viewAnalysis:
		return a.analysis.refresh()
	case viewBooks:
		return a.books.refresh()
	case viewActivities:
		return a.activities.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.reminder.active {
		return a.reminder.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewHome:
		content = a.home.view()
	case viewRecords:
		content = a.records.view()
	case viewAnalysis:
		content = a.analysis.view()
	case viewBooks:
		content = a.books.view()
	case viewActivities:
		content = a.activities.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("baby-tracker")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Running timer indicator for the active book
	timerInfo := ""
	book := a.store.ActiveBook()
	for _, ts := range a.store.RunningTimers(book.ID) {
		timerInfo = successStyle.Render(" ● " + timefmt.Clock(store.Elapsed(ts)))
		break
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("导出格式")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: 导出  esc: 取消"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		book := a.store.ActiveBook()
		records := a.store.RecordsForBook(book.ID)

		catalog := make(map[string]store.Activity)
		for _, act := range a.store.Activities() {
			catalog[act.ID] = act
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("baby-tracker-%s.csv", dateStr))
			if err := export.ToCSV(records, catalog, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV 导出失败: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("baby-tracker-%s.json", dateStr))
			if err := export.ToJSON(records, catalog, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON 导出失败: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
