package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kirksw/ghorg/internal/github"
)

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	instructionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	licenseStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type repoDelegate struct{}

func (d repoDelegate) Height() int                             { return 2 }
func (d repoDelegate) Spacing() int                            { return 1 }
func (d repoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d repoDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(repoItem)
	if !ok {
		return
	}

	str := item.repo.Name()
	if key := item.repo.LicenseKey(); key != "" {
		str += fmt.Sprintf(" [%s]", key)
	}
	if desc := item.repo.Description(); desc != "" {
		str += fmt.Sprintf("\n  %s", truncateString(desc, 60))
	}

	style := lipgloss.NewStyle()
	if index == m.Index() {
		style = selectedStyle
	}

	fmt.Fprint(w, style.Render(str))
}

type repoItem struct {
	repo github.RepoRecord
}

func (i repoItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.repo.Name(), i.repo.FullName(), i.repo.Description())
}

type pickerModel struct {
	org       string
	repos     []github.RepoRecord
	licenses  []string
	license   int // index into licenses; -1 means any
	repoList  list.Model
	textinput textinput.Model
	lastInput string
	selected  github.RepoRecord
	quitting  bool
}

func newPickerModel(org string, repos []github.RepoRecord) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Search repos..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 80

	l := list.New(nil, repoDelegate{}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetWidth(80)
	l.SetHeight(12)

	m := pickerModel{
		org:       org,
		repos:     repos,
		licenses:  licenseKeys(repos),
		license:   -1,
		textinput: ti,
	}

	l.SetItems(m.filterRepos(""))
	m.repoList = l

	return m
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.repoList.SetWidth(msg.Width)
		m.repoList.SetHeight(max(msg.Height-8, 4))
		m.textinput.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.selected = nil
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if item, ok := m.repoList.SelectedItem().(repoItem); ok {
				m.selected = item.repo
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case tea.KeyTab:
			m.license++
			if m.license >= len(m.licenses) {
				m.license = -1
			}
			m.repoList.SetItems(m.filterRepos(m.textinput.Value()))
			m.repoList.ResetSelected()
			return m, nil

		case tea.KeyDown, tea.KeyCtrlN:
			m.repoList.CursorDown()
			return m, nil

		case tea.KeyUp, tea.KeyCtrlP:
			m.repoList.CursorUp()
			return m, nil
		}
	}

	ti, cmd := m.textinput.Update(msg)
	m.textinput = ti

	if current := m.textinput.Value(); current != m.lastInput {
		m.lastInput = current
		m.repoList.SetItems(m.filterRepos(current))
		m.repoList.ResetSelected()
	}

	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Repositories of %s", m.org)))
	if license := m.activeLicense(); license != "" {
		b.WriteString("  ")
		b.WriteString(licenseStyle.Render("license: " + license))
	}

	b.WriteString("\n\n")
	b.WriteString(m.textinput.View())
	b.WriteString("\n\n")

	if len(m.repoList.Items()) > 0 {
		b.WriteString(m.repoList.View())
	} else {
		b.WriteString(dimStyle.Render("No repos found"))
	}

	b.WriteString("\n\n")
	b.WriteString(instructionStyle.Render("up/down: navigate | tab: cycle license | enter: select | esc: cancel"))

	return b.String()
}

func (m pickerModel) activeLicense() string {
	if m.license < 0 || m.license >= len(m.licenses) {
		return ""
	}
	return m.licenses[m.license]
}

func (m pickerModel) filterRepos(query string) []list.Item {
	query = strings.ToLower(query)

	var items []list.Item
	for _, repo := range github.FilterRepos(m.repos, m.activeLicense()) {
		if query != "" &&
			!strings.Contains(strings.ToLower(repo.Name()), query) &&
			!strings.Contains(strings.ToLower(repo.Description()), query) {
			continue
		}
		items = append(items, repoItem{repo: repo})
	}
	return items
}

func licenseKeys(repos []github.RepoRecord) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, repo := range repos {
		key := repo.LicenseKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// RunRepoPicker lets the user pick one repository. A nil record with a nil
// error means the picker was cancelled.
func RunRepoPicker(org string, repos []github.RepoRecord) (github.RepoRecord, error) {
	p := tea.NewProgram(newPickerModel(org, repos), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run repo picker: %w", err)
	}

	m, ok := finalModel.(pickerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	return m.selected, nil
}
