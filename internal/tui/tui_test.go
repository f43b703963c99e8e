package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Niansi/baby-tracker/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadHome builds a sized home model and feeds it its own refresh message,
// the way the Bubble Tea runtime would.
func loadHome(t *testing.T, s *store.Store) homeModel {
	t.Helper()
	m := newHomeModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)
	return m
}

func selectActivity(t *testing.T, m *homeModel, name string) store.BookActivity {
	t.Helper()
	for i, ba := range m.activities {
		if ba.Name == name {
			m.cursor = i
			return ba
		}
	}
	t.Fatalf("activity %q not on the home grid", name)
	return store.BookActivity{}
}

func sleepID(t *testing.T, s *store.Store) string {
	t.Helper()
	for _, a := range s.Activities() {
		if a.Name == "睡觉" {
			return a.ID
		}
	}
	t.Fatal("sleep activity missing from default catalog")
	return ""
}

// ============================================================
// Home model
// ============================================================

func TestHomeRefreshShowsVisibleActivities(t *testing.T) {
	s := newTestStore(t)
	m := loadHome(t, s)

	if len(m.activities) != 6 {
		t.Fatalf("expected 6 visible activities, got %d", len(m.activities))
	}

	sleep := selectActivity(t, &m, "睡觉")
	if err := s.SetVisible(m.book.ID, sleep.ID, false); err != nil {
		t.Fatal(err)
	}
	msg := m.refresh()()
	m, _ = m.update(msg)
	if len(m.activities) != 5 {
		t.Fatalf("hidden activity should leave the grid, got %d", len(m.activities))
	}
}

func TestHomeQuickRecordCount(t *testing.T) {
	s := newTestStore(t)
	m := loadHome(t, s)
	selectActivity(t, &m, "臭臭")

	m, cmd := m.quickRecord()
	if cmd == nil {
		t.Fatal("count quick record should emit commands")
	}
	if m.formActive {
		t.Fatal("count activities must not prompt")
	}

	records := s.RecordsForBook(m.book.ID)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Kind != store.KindCount || records[0].Value != 1 {
		t.Fatalf("count record should have value 1: %+v", records[0])
	}
}

func TestHomeQuickRecordValuePrompts(t *testing.T) {
	s := newTestStore(t)
	m := loadHome(t, s)
	selectActivity(t, &m, "奶瓶喂养")

	m, _ = m.quickRecord()
	if !m.formActive {
		t.Fatal("value activities should prompt for an amount")
	}
	if got := s.RecordsForBook(m.book.ID); got != nil {
		t.Fatal("no record until the prompt completes")
	}
}

func TestHomeQuickRecordTogglesTimer(t *testing.T) {
	s := newTestStore(t)
	m := loadHome(t, s)
	sleep := selectActivity(t, &m, "睡觉")

	m, _ = m.quickRecord()
	if !s.TimerFor(m.book.ID, sleep.ID).IsRunning {
		t.Fatal("first press should start the timer")
	}

	m, _ = m.quickRecord()
	if s.TimerFor(m.book.ID, sleep.ID).IsRunning {
		t.Fatal("second press should stop the timer")
	}
	records := s.RecordsForBook(m.book.ID)
	if len(records) != 1 || records[0].Kind != store.KindDuration {
		t.Fatalf("stopping should log a duration record, got %+v", records)
	}
}

func TestHomeStartTimerIgnoresNonTimerActivities(t *testing.T) {
	s := newTestStore(t)
	m := loadHome(t, s)
	poop := selectActivity(t, &m, "臭臭")

	m, _ = m.startTimer()
	if s.TimerFor(m.book.ID, poop.ID).IsRunning {
		t.Fatal("count activities cannot be timed")
	}
}

func TestHomeBookPickerSwitchesActiveBook(t *testing.T) {
	s := newTestStore(t)
	second, err := s.AddBook("二号", "📒", "blue", "")
	if err != nil {
		t.Fatal(err)
	}

	m := loadHome(t, s)
	m.picking = true
	m.pickerCursor = 1 // the new book

	m, _ = m.updatePicker(tea.KeyMsg{Type: tea.KeyEnter})
	if m.picking {
		t.Fatal("picker should close on enter")
	}
	if s.ActiveBook().ID != second.ID {
		t.Fatal("selection should switch the active book")
	}
}

// ============================================================
// Reminder watchdog
// ============================================================

func TestReminderTriggersAfterInactivity(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	sleep := sleepID(t, s)
	s.StartTimer(b.ID, sleep)

	m := newReminderModel(s)
	m.lastInput = timeNow().Add(-inactivityTimeout - time.Second)

	m.maybeTrigger(true)
	if !m.active {
		t.Fatal("overlay should trigger after the timeout on the home view")
	}
}

func TestReminderDoesNotTriggerOffHome(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	s.StartTimer(b.ID, sleepID(t, s))

	m := newReminderModel(s)
	m.lastInput = timeNow().Add(-time.Minute)

	m.maybeTrigger(false)
	if m.active {
		t.Fatal("overlay must not trigger away from the home view")
	}
}

func TestReminderDoesNotTriggerWithoutData(t *testing.T) {
	s := newTestStore(t)

	m := newReminderModel(s)
	m.lastInput = timeNow().Add(-time.Minute)

	m.maybeTrigger(true)
	if m.active {
		t.Fatal("overlay must not trigger when no highlight has data")
	}
}

func TestReminderDoesNotTriggerWhileActive(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	s.StartTimer(b.ID, sleepID(t, s))

	m := newReminderModel(s)
	m.lastInput = timeNow().Add(-time.Minute)
	m.maybeTrigger(true)
	if !m.active {
		t.Fatal("precondition: overlay active")
	}
	m.maybeTrigger(true) // second tick is absorbed
	if !m.active {
		t.Fatal("overlay should stay up")
	}
}

func TestReminderKeypressDismisses(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	s.StartTimer(b.ID, sleepID(t, s))

	m := newReminderModel(s)
	m.lastInput = timeNow().Add(-time.Minute)
	m.maybeTrigger(true)

	consumed := m.recordInput()
	if !consumed {
		t.Fatal("the dismissing keypress should be consumed")
	}
	if m.active {
		t.Fatal("overlay should be dismissed")
	}

	// A keypress with no overlay up just re-arms the clock.
	if m.recordInput() {
		t.Fatal("keypress without an overlay should not be consumed")
	}
	if timeNow().Sub(m.lastInput) > time.Second {
		t.Fatal("keypress should reset the inactivity clock")
	}
}

func TestReminderTeardownDisarms(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	s.StartTimer(b.ID, sleepID(t, s))

	m := newReminderModel(s)
	m.lastInput = timeNow().Add(-time.Minute)
	m.maybeTrigger(true)

	m.teardown()
	if m.active {
		t.Fatal("teardown should close the overlay")
	}
	m.maybeTrigger(true)
	if m.active {
		t.Fatal("teardown should also reset the inactivity clock")
	}
}

func TestReminderViewShowsLiveTimer(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	s.StartTimer(b.ID, sleepID(t, s))

	m := newReminderModel(s)
	m.setSize(120, 40)
	m.active = true

	out := m.view()
	if !strings.Contains(out, "睡觉") {
		t.Fatal("overlay should show the highlighted activity")
	}
	if !strings.Contains(out, "正在进行") {
		t.Fatal("running timer should render as live")
	}
}

func TestReminderViewShowsNoRecordState(t *testing.T) {
	s := newTestStore(t)

	m := newReminderModel(s)
	m.setSize(120, 40)
	m.active = true

	if !strings.Contains(m.view(), "暂无记录") {
		t.Fatal("never-used highlight should show the no-record state")
	}
}

// ============================================================
// Analysis model
// ============================================================

func TestAnalysisDateRange(t *testing.T) {
	fixed := time.Date(2025, 3, 15, 10, 30, 0, 0, time.Local)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	s := newTestStore(t)
	m := newAnalysisModel(s)

	from, to := m.dateRange()
	if !to.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("window should end today at midnight, got %v", to)
	}
	if !from.Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("window should start 6 days back, got %v", from)
	}

	m.offset = 1
	_, to2 := m.dateRange()
	if !to2.Equal(from.AddDate(0, 0, -1)) {
		t.Fatalf("offset window should end the day before the current one starts: %v vs %v", to2, from)
	}
}

func TestAnalysisBuildChartsWithData(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	feed := ""
	for _, a := range s.Activities() {
		if a.Kind == store.KindValue {
			feed = a.ID
			break
		}
	}
	s.AddRecord(store.Record{BookID: b.ID, ActivityID: feed, Kind: store.KindValue, Value: 120, Unit: "ml"})

	m := newAnalysisModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)

	if len(m.records) != 1 {
		t.Fatalf("expected today's record in range, got %d", len(m.records))
	}

	// All three chart modes render without panicking.
	for mode := analysisCounts; mode <= analysisHeatmap; mode++ {
		m.mode = mode
		m.buildCharts()
		if m.view() == "" {
			t.Fatalf("mode %d rendered empty", mode)
		}
	}
}

func TestAnalysisHeatmapEmpty(t *testing.T) {
	s := newTestStore(t)
	m := newAnalysisModel(s)
	m.setSize(120, 40)
	m.mode = analysisHeatmap

	if !strings.Contains(m.view(), "没有记录") {
		t.Fatal("empty heatmap should say so")
	}
}

// ============================================================
// Records model
// ============================================================

func loadRecords(t *testing.T, s *store.Store) recordsModel {
	t.Helper()
	m := newRecordsModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)
	return m
}

func addRecord(t *testing.T, s *store.Store, name string, value float64) store.Record {
	t.Helper()
	b := s.ActiveBook()
	for _, a := range s.Activities() {
		if a.Name != name {
			continue
		}
		rec, err := s.AddRecord(store.Record{
			BookID:     b.ID,
			ActivityID: a.ID,
			Kind:       a.Kind,
			Value:      value,
			Unit:       a.Unit,
		})
		if err != nil {
			t.Fatal(err)
		}
		return *rec
	}
	t.Fatalf("no catalog activity named %q", name)
	return store.Record{}
}

func TestRecordsCountKindNotEditable(t *testing.T) {
	s := newTestStore(t)
	addRecord(t, s, "臭臭", 1)

	m := loadRecords(t, s)
	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	if m.formActive {
		t.Fatal("count records must not open the edit form")
	}
	if cmd == nil {
		t.Fatal("expected a status message explaining the refusal")
	}
	status, ok := cmd().(statusMsg)
	if !ok || status.isError {
		t.Fatalf("refusal is informational, got %#v", status)
	}
}

func TestRecordsEditOpensFormForValueKind(t *testing.T) {
	s := newTestStore(t)
	addRecord(t, s, "奶瓶喂养", 120)

	m := loadRecords(t, s)
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	if !m.formActive {
		t.Fatal("value records should open the edit form")
	}
	if *m.formValue != "120" {
		t.Fatalf("form should preload the current value, got %q", *m.formValue)
	}
}

func TestRecordsDeleteRemovesRecord(t *testing.T) {
	s := newTestStore(t)
	addRecord(t, s, "奶瓶喂养", 120)

	m := loadRecords(t, s)
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})

	if got := s.RecordsForBook(s.ActiveBook().ID); got != nil {
		t.Fatalf("record should be gone, got %+v", got)
	}
}

func TestRecordsDanglingActivityFallback(t *testing.T) {
	s := newTestStore(t)
	m := loadRecords(t, s)
	m.records = []store.Record{{ID: "r1", ActivityID: "ghost", Kind: store.KindCount, Value: 1, Unit: "次", StartTime: timeNow()}}

	out := m.view()
	if !strings.Contains(out, "未知活动") {
		t.Fatal("dangling record should render the unknown-activity placeholder")
	}
}

// ============================================================
// Books model
// ============================================================

func TestBooksDeleteLastBookShowsError(t *testing.T) {
	s := newTestStore(t)
	m := newBooksModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if cmd == nil {
		t.Fatal("refused delete should surface a status message")
	}
	status, ok := cmd().(statusMsg)
	if !ok || !status.isError {
		t.Fatalf("expected an error status, got %#v", status)
	}
	if len(s.Books()) != 1 {
		t.Fatal("the last book must survive")
	}
}

func TestBooksEnterSetsActive(t *testing.T) {
	s := newTestStore(t)
	first := s.ActiveBook()
	s.AddBook("二号", "📒", "blue", "")

	m := newBooksModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)
	m.cursor = 0

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if s.ActiveBook().ID != first.ID {
		t.Fatal("enter should activate the selected book")
	}
}

// ============================================================
// Activities model
// ============================================================

func TestActivitiesHighlightCapSurfacesError(t *testing.T) {
	s := newTestStore(t)
	m := newActivitiesModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)
	m.viewingConfig = true

	// Highlight everything until the cap bites.
	var lastCmd tea.Cmd
	for i := range m.attached {
		if m.attached[i].Highlighted {
			continue
		}
		m.configCursor = i
		m, lastCmd = m.updateConfigView(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
		refreshed := m.refresh()()
		m, _ = m.update(refreshed)
	}

	if lastCmd == nil {
		t.Fatal("expected a command from the final toggle")
	}
	status, ok := lastCmd().(statusMsg)
	if !ok || !status.isError {
		t.Fatalf("over-cap toggle should surface an error status, got %#v", status)
	}
	count := 0
	for _, ba := range s.BookActivities(s.ActiveBook().ID) {
		if ba.Highlighted {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("highlight count should cap at 3, got %d", count)
	}
}

func TestActivitiesMoveReorders(t *testing.T) {
	s := newTestStore(t)
	m := newActivitiesModel(s)
	m.setSize(120, 40)
	msg := m.refresh()()
	m, _ = m.update(msg)
	m.viewingConfig = true
	m.configCursor = 0

	firstID := m.attached[0].ID
	m, _ = m.move(1)

	attached := s.BookActivities(s.ActiveBook().ID)
	if attached[1].ID != firstID {
		t.Fatal("move down should swap with the next visible activity")
	}
}

func TestActivitiesUnattachedList(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	sleep := sleepID(t, s)
	s.DetachActivity(b.ID, sleep)

	m := newActivitiesModel(s)
	msg := m.refresh()()
	m, _ = m.update(msg)

	un := m.unattachedActivities()
	if len(un) != 1 || un[0].ID != sleep {
		t.Fatalf("expected only the detached activity, got %+v", un)
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestMinMax(t *testing.T) {
	if min(3, 5) != 3 {
		t.Fatal("min(3,5) should be 3")
	}
	if min(5, 3) != 3 {
		t.Fatal("min(5,3) should be 3")
	}
	if max(3, 5) != 5 {
		t.Fatal("max(3,5) should be 5")
	}
	if max(5, 3) != 5 {
		t.Fatal("max(5,3) should be 5")
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 6 {
		t.Fatalf("expected 6 view names, got %d", len(viewNames))
	}
	expected := []string{"首页", "记录", "分析", "本子", "活动", "设置"}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

func TestViewStateConstants(t *testing.T) {
	if viewHome != 0 || viewRecords != 1 || viewAnalysis != 2 || viewBooks != 3 || viewActivities != 4 || viewSettings != 5 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)

	if app.activeView != viewHome {
		t.Fatal("default view should be home")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
}

func TestAppIsFormActiveDefault(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)

	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	app.width = 120
	app.height = 40
	app.home.setSize(120, 36)
	app.records.setSize(120, 36)
	app.analysis.setSize(120, 36)
	app.books.setSize(120, 36)
	app.activities.setSize(120, 36)
	app.settings.setSize(120, 36)

	views := []viewState{viewHome, viewRecords, viewAnalysis, viewBooks, viewActivities, viewSettings}
	for _, v := range views {
		app.activeView = v
		output := app.View()
		if output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	// Width 0 means not yet sized
	output := app.View()
	if output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	app.width = 120
	app.height = 40
	app.status = "test status"

	footer := app.renderFooter()
	if !strings.Contains(footer, "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppReminderOverlayTakesOver(t *testing.T) {
	s := newTestStore(t)
	b := s.ActiveBook()
	s.StartTimer(b.ID, sleepID(t, s))

	app := NewApp(s)
	app.width = 120
	app.height = 40
	app.reminder.setSize(120, 40)
	app.reminder.active = true

	out := app.View()
	if !strings.Contains(out, "睡觉") {
		t.Fatal("overlay should replace the regular view")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test — just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		result := s.fn()
		if result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

func TestTokenColorFallback(t *testing.T) {
	if tokenColor("blue") == colorFg {
		t.Fatal("known tokens should map to their own color")
	}
	if tokenColor("nope") != colorFg {
		t.Fatal("unknown tokens should fall back to the default foreground")
	}
}
