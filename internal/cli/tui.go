package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listExcludedStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// ExclusionPickerModel - Interactive exclusion selection
// =============================================================================

// pickerItem is one package name in the picker. Several vendored directories
// (e.g. two versions of a crate) collapse into one item.
type pickerItem struct {
	Name string
	Dirs []string
}

// ExclusionPickerModel is the bubbletea model for choosing excluded packages.
type ExclusionPickerModel struct {
	Items     []pickerItem
	Selected  map[string]bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool

	// configured names that are not in the vendor tree; kept on save
	extra []string
}

// NewExclusionPickerModel creates a picker over candidates with the names in
// current preselected.
func NewExclusionPickerModel(candidates []vendor.Candidate, current []string) ExclusionPickerModel {
	index := map[string]int{}
	var items []pickerItem
	for _, c := range candidates {
		name := c.Name()
		if i, ok := index[name]; ok {
			items[i].Dirs = append(items[i].Dirs, c.DirName)
			continue
		}
		index[name] = len(items)
		items = append(items, pickerItem{Name: name, Dirs: []string{c.DirName}})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	m := ExclusionPickerModel{Items: items, Selected: map[string]bool{}, Height: 15}
	for _, name := range current {
		if _, ok := index[name]; ok {
			m.Selected[name] = true
		} else {
			m.extra = append(m.extra, name)
		}
	}
	return m
}

// Excluded returns the selected names plus configured names absent from the
// vendor tree, sorted.
func (m ExclusionPickerModel) Excluded() []string {
	out := append([]string(nil), m.extra...)
	for name, on := range m.Selected {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (m ExclusionPickerModel) Init() tea.Cmd {
	return nil
}

func (m ExclusionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space", "x":
			if len(m.Items) > 0 {
				name := m.Items[m.Cursor].Name
				m.Selected = cloneSet(m.Selected)
				m.Selected[name] = !m.Selected[name]
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ExclusionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Excluded Packages"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ save  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}

	for i := m.Offset; i < end; i++ {
		it := m.Items[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Selected[it.Name] {
			box = listExcludedStyle.Render("[x]")
		}

		name := listNormalStyle.Render(it.Name)
		if i == m.Cursor {
			name = listSelectedStyle.Render(it.Name)
		}
		line := cursor + box + " " + name
		if len(it.Dirs) > 1 || it.Dirs[0] != it.Name {
			line += " " + listDimStyle.Render(strings.Join(it.Dirs, ", "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.Items) > m.Height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d-%d of %d", m.Offset+1, end, len(m.Items))))
		b.WriteString("\n")
	}
	return b.String()
}

func cloneSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
