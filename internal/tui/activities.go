package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Niansi/baby-tracker/internal/store"
)

var kindNames = map[store.Kind]string{
	store.KindCount:    "次数",
	store.KindValue:    "数值",
	store.KindDuration: "时长",
}

type activitiesModel struct {
	store  *store.Store
	width  int
	height int

	catalog []store.Activity
	cursor  int

	// Per-book config view for the active book
	viewingConfig bool
	book          store.Book
	attached      []store.BookActivity
	configCursor  int

	// Attach picker inside the config view
	attaching    bool
	unattached   []store.Activity
	attachCursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formName  *string
	formKind  *string
	formUnit  *string
	formIcon  *string
	formColor *string
	formTimer *bool

	editingID string
}

func newActivitiesModel(s *store.Store) activitiesModel {
	name, kind, unit := "", string(store.KindCount), "次"
	icon, color := store.CustomIcons[0], store.CustomColors[0]
	timer := false
	return activitiesModel{
		store:     s,
		formName:  &name,
		formKind:  &kind,
		formUnit:  &unit,
		formIcon:  &icon,
		formColor: &color,
		formTimer: &timer,
	}
}

func (m *activitiesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type activitiesDataMsg struct {
	catalog  []store.Activity
	book     store.Book
	attached []store.BookActivity
}

func (m activitiesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		book := m.store.ActiveBook()
		return activitiesDataMsg{
			catalog:  m.store.Activities(),
			book:     book,
			attached: m.store.BookActivities(book.ID),
		}
	}
}

func (m activitiesModel) update(msg tea.Msg) (activitiesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case activitiesDataMsg:
		m.catalog = msg.catalog
		m.book = msg.book
		m.attached = msg.attached
		if m.cursor >= len(m.catalog) {
			m.cursor = max(0, len(m.catalog)-1)
		}
		if m.configCursor >= len(m.attached) {
			m.configCursor = max(0, len(m.attached)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.viewingConfig {
			return m.updateConfigView(msg)
		}
		return m.updateCatalogList(msg)
	}
	return m, nil
}

func (m activitiesModel) updateCatalogList(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.catalog)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.viewingConfig = true
		m.configCursor = 0
		return m, m.refresh()
	case key.Matches(msg, keys.New):
		return m.showForm("new", store.Activity{})
	case key.Matches(msg, keys.Edit):
		if len(m.catalog) > 0 {
			return m.showForm("edit", m.catalog[m.cursor])
		}
	case key.Matches(msg, keys.Delete):
		if len(m.catalog) > 0 {
			a := m.catalog[m.cursor]
			if err := m.store.DeleteActivity(a.ID); err != nil {
				if err == store.ErrActivityInUse {
					n := m.store.UsageCount(a.ID)
					return m, func() tea.Msg {
						return statusMsg{
							text:    fmt.Sprintf("%s 仍在 %d 个本子中使用，先移除再删除", a.Name, n),
							isError: true,
						}
					}
				}
				return m, errStatus(err)
			}
			return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
		}
	}
	return m, nil
}

func (m activitiesModel) updateConfigView(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	if m.attaching {
		return m.updateAttachPicker(msg)
	}

	switch {
	case key.Matches(msg, keys.Back):
		m.viewingConfig = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.configCursor > 0 {
			m.configCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.configCursor < len(m.attached)-1 {
			m.configCursor++
		}
	case key.Matches(msg, keys.Toggle):
		if len(m.attached) > 0 {
			ba := m.attached[m.configCursor]
			if err := m.store.SetVisible(m.book.ID, ba.ID, !ba.Visible); err != nil {
				return m, errStatus(err)
			}
			return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
		}
	case key.Matches(msg, keys.Highlight):
		if len(m.attached) > 0 {
			ba := m.attached[m.configCursor]
			if err := m.store.SetHighlight(m.book.ID, ba.ID, !ba.Highlighted); err != nil {
				if err == store.ErrHighlightLimit {
					return m, func() tea.Msg {
						return statusMsg{text: "最多关注 3 个活动", isError: true}
					}
				}
				return m, errStatus(err)
			}
			return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
		}
	case key.Matches(msg, keys.MoveUp):
		return m.move(-1)
	case key.Matches(msg, keys.MoveDown):
		return m.move(1)
	case key.Matches(msg, keys.New):
		m.unattached = m.unattachedActivities()
		if len(m.unattached) == 0 {
			return m, func() tea.Msg {
				return statusMsg{text: "所有活动都已添加", isError: false}
			}
		}
		m.attaching = true
		m.attachCursor = 0
	case key.Matches(msg, keys.Delete):
		if len(m.attached) > 0 {
			ba := m.attached[m.configCursor]
			if err := m.store.DetachActivity(m.book.ID, ba.ID); err != nil {
				return m, errStatus(err)
			}
			return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
		}
	}
	return m, nil
}

// move shifts the selected activity within the visible subsequence; hidden
// entries can't be reordered from the keyboard.
func (m activitiesModel) move(delta int) (activitiesModel, tea.Cmd) {
	if m.configCursor >= len(m.attached) {
		return m, nil
	}
	sel := m.attached[m.configCursor]
	if !sel.Visible {
		return m, nil
	}
	vi := -1
	idx := 0
	for _, ba := range m.attached {
		if !ba.Visible {
			continue
		}
		if ba.ID == sel.ID {
			vi = idx
			break
		}
		idx++
	}
	if vi < 0 {
		return m, nil
	}
	if err := m.store.Reorder(m.book.ID, vi, vi+delta); err != nil {
		return m, errStatus(err)
	}
	m.configCursor = max(0, min(m.configCursor+delta, len(m.attached)-1))
	return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
}

func (m activitiesModel) unattachedActivities() []store.Activity {
	attached := map[string]bool{}
	for _, ba := range m.attached {
		attached[ba.ID] = true
	}
	var out []store.Activity
	for _, a := range m.catalog {
		if !attached[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

func (m activitiesModel) updateAttachPicker(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.attachCursor > 0 {
			m.attachCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.attachCursor < len(m.unattached)-1 {
			m.attachCursor++
		}
	case key.Matches(msg, keys.Enter):
		a := m.unattached[m.attachCursor]
		m.attaching = false
		if err := m.store.AttachActivity(m.book.ID, a.ID); err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
	case key.Matches(msg, keys.Back):
		m.attaching = false
	}
	return m, nil
}

func (m activitiesModel) showForm(formType string, a store.Activity) (activitiesModel, tea.Cmd) {
	if formType == "edit" {
		*m.formName = a.Name
		*m.formKind = string(a.Kind)
		*m.formUnit = a.Unit
		*m.formIcon = a.Icon
		*m.formColor = a.Color
		*m.formTimer = a.HasLiveTimer
		m.editingID = a.ID
	} else {
		*m.formName = ""
		*m.formKind = string(store.KindCount)
		*m.formUnit = "次"
		*m.formIcon = store.CustomIcons[0]
		*m.formColor = store.CustomColors[0]
		*m.formTimer = false
	}
	m.formType = formType

	iconOptions := make([]huh.Option[string], len(store.CustomIcons))
	for i, ic := range store.CustomIcons {
		iconOptions[i] = huh.NewOption(ic, ic)
	}
	colorOptions := make([]huh.Option[string], len(store.CustomColors))
	for i, c := range store.CustomColors {
		colorOptions[i] = huh.NewOption(tokenStyle(c).Render("● "+c), c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("名字").Value(m.formName),
			huh.NewSelect[string]().Title("类型").
				Options(
					huh.NewOption("次数 (点一下记一次)", string(store.KindCount)),
					huh.NewOption("数值 (记录数量)", string(store.KindValue)),
					huh.NewOption("时长 (记录时间)", string(store.KindDuration)),
				).Value(m.formKind),
			huh.NewInput().Title("单位").Value(m.formUnit),
			huh.NewSelect[string]().Title("图标").Options(iconOptions...).Value(m.formIcon),
			huh.NewSelect[string]().Title("颜色").Options(colorOptions...).Value(m.formColor),
			huh.NewConfirm().Title("启用实时计时 (仅时长类)").Value(m.formTimer),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m activitiesModel) updateForm(msg tea.Msg) (activitiesModel, tea.Cmd) {
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
		if *m.formName == "" {
			return m, m.refresh()
		}
		def := store.Activity{
			Name:         *m.formName,
			Kind:         store.Kind(*m.formKind),
			Unit:         *m.formUnit,
			Icon:         *m.formIcon,
			Color:        *m.formColor,
			HasLiveTimer: *m.formTimer,
		}
		var err error
		if m.formType == "edit" {
			err = m.store.UpdateActivity(m.editingID, def)
		} else {
			_, err = m.store.AddActivity(def)
		}
		if err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return configChangedMsg{} })
	}

	return m, cmd
}

func (m activitiesModel) view() string {
	if m.formActive && m.form != nil {
		w := m.width - 4
		title := titleStyle.Render("新活动")
		if m.formType == "edit" {
			title = titleStyle.Render("编辑活动")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if m.viewingConfig {
		return m.renderConfigView()
	}
	return m.renderCatalogList()
}

func (m activitiesModel) renderCatalogList() string {
	w := m.width - 4
	title := titleStyle.Render("活动目录")

	if len(m.catalog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("目录是空的，按 n 新建活动。"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-14s %-6s %-6s %s", "", "名字", "类型", "单位", "使用"))
	rows = append(rows, header)

	for i, a := range m.catalog {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		timer := ""
		if a.HasLiveTimer {
			timer = successStyle.Render(" ⏱")
		}
		used := m.store.UsageCount(a.ID)
		row := style.Render(fmt.Sprintf("%s%s %-12s %-6s %-6s %d 本", cursor, a.Icon, a.Name, kindNames[a.Kind], a.Unit, used))
		rows = append(rows, row+timer)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: 新建  e: 编辑  d: 删除  enter: 本子配置"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m activitiesModel) renderConfigView() string {
	w := m.width - 4
	title := titleStyle.Render(fmt.Sprintf("%s %s — 活动配置", m.book.Icon, m.book.Name))

	if m.attaching {
		return m.renderAttachPicker(w, title)
	}

	if len(m.attached) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("这个本子还没有活动，按 n 添加。"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, ba := range m.attached {
		cursor := "  "
		style := normalItemStyle
		if i == m.configCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		visible := successStyle.Render("●")
		if !ba.Visible {
			visible = mutedStyle.Render("○")
		}
		mark := "  "
		if ba.Highlighted {
			mark = accentStyle.Render("★ ")
		}
		name := ba.Name
		if !ba.Visible {
			name = mutedStyle.Render(name)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s%s %s", cursor, visible, mark, ba.Icon, name)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: 显示/隐藏  m: 关注  K/J: 排序  n: 添加  d: 移除  esc: 返回"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m activitiesModel) renderAttachPicker(w int, title string) string {
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  选择要添加的活动"))
	rows = append(rows, "")
	for i, a := range m.unattached {
		cursor := "  "
		style := normalItemStyle
		if i == m.attachCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, a.Icon, a.Name)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: 添加  esc: 取消"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
