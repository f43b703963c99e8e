package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Niansi/baby-tracker/internal/store"
)

type booksModel struct {
	store  *store.Store
	width  int
	height int

	books    []store.Book
	activeID string
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formName  *string
	formIcon  *string
	formColor *string
	formDate  *string

	editingID string
}

func newBooksModel(s *store.Store) booksModel {
	name, icon, color, date := "", store.CustomIcons[0], store.CustomColors[0], ""
	return booksModel{
		store:     s,
		formName:  &name,
		formIcon:  &icon,
		formColor: &color,
		formDate:  &date,
	}
}

func (m *booksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type booksDataMsg struct {
	books    []store.Book
	activeID string
}

func (m booksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return booksDataMsg{
			books:    m.store.Books(),
			activeID: m.store.ActiveBook().ID,
		}
	}
}

func (m booksModel) update(msg tea.Msg) (booksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case booksDataMsg:
		m.books = msg.books
		m.activeID = msg.activeID
		if m.cursor >= len(m.books) {
			m.cursor = max(0, len(m.books)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.books)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(m.books) > 0 {
				if err := m.store.SetActiveBook(m.books[m.cursor].ID); err != nil {
					return m, errStatus(err)
				}
				return m, tea.Batch(m.refresh(), func() tea.Msg { return booksChangedMsg{} })
			}
		case key.Matches(msg, keys.New):
			return m.showForm("new", store.Book{})
		case key.Matches(msg, keys.Edit):
			if len(m.books) > 0 {
				return m.showForm("edit", m.books[m.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if len(m.books) > 0 {
				if err := m.store.DeleteBook(m.books[m.cursor].ID); err != nil {
					if err == store.ErrLastBook {
						return m, func() tea.Msg {
							return statusMsg{text: "至少保留一个本子", isError: true}
						}
					}
					return m, errStatus(err)
				}
				return m, tea.Batch(m.refresh(), func() tea.Msg { return booksChangedMsg{} })
			}
		}
	}
	return m, nil
}

func (m booksModel) showForm(formType string, b store.Book) (booksModel, tea.Cmd) {
	if formType == "edit" {
		*m.formName = b.Name
		*m.formIcon = b.Icon
		*m.formColor = b.Color
		*m.formDate = b.StartDate
		m.editingID = b.ID
	} else {
		*m.formName = ""
		*m.formIcon = store.CustomIcons[0]
		*m.formColor = store.CustomColors[0]
		*m.formDate = time.Now().Format("2006-01-02")
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
			huh.NewSelect[string]().Title("图标").Options(iconOptions...).Value(m.formIcon),
			huh.NewSelect[string]().Title("颜色").Options(colorOptions...).Value(m.formColor),
			huh.NewInput().Title("出生日期 (YYYY-MM-DD)").Value(m.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m booksModel) updateForm(msg tea.Msg) (booksModel, tea.Cmd) {
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
		var err error
		if m.formType == "edit" {
			err = m.store.UpdateBook(m.editingID, *m.formName, *m.formIcon, *m.formColor, *m.formDate)
		} else {
			_, err = m.store.AddBook(*m.formName, *m.formIcon, *m.formColor, *m.formDate)
		}
		if err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return booksChangedMsg{} })
	}

	return m, cmd
}

func (m booksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("新本子")
		if m.formType == "edit" {
			title = titleStyle.Render("编辑本子")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render("本子")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, b := range m.books {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		active := ""
		if b.ID == m.activeID {
			active = successStyle.Render(" ✓ 当前")
		}
		age := ""
		if d := b.Age(timeNow()); d >= 0 {
			age = mutedStyle.Render(fmt.Sprintf("  第 %d 天", d+1))
		}
		dot := tokenStyle(b.Color).Render("●")
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s %s", cursor, dot, b.Icon, b.Name))+age+active)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: 设为当前  n: 新建  e: 编辑  d: 删除"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
