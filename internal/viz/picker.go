package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type PickerItem struct {
	Name        string
	Description string
}

// Picker is a list menu; the chosen item is available after it quits.
type Picker struct {
	title  string
	items  []PickerItem
	cursor int
	chosen int
}

func NewPicker(title string, items []PickerItem) *Picker {
	return &Picker{title: title, items: items, chosen: -1}
}

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key.String() {
	case "q", "esc", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.items) > 0 {
			p.chosen = p.cursor
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p *Picker) View() string {
	var b strings.Builder
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	b.WriteString("\n\n    " + titleStyle().Render(p.title) + "\n    " + sub.Render(strings.Repeat("─", 25)) + "\n\n")

	for i, item := range p.items {
		name := fmt.Sprintf("%-12s", item.Name)
		if i == p.cursor {
			marker := lipgloss.NewStyle().Foreground(CurrentTheme.Particle).Bold(true).Render("▸")
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", marker,
				lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(name),
				lipgloss.NewStyle().Foreground(CurrentTheme.Anchor).Render(item.Description)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(name), sub.Render(item.Description)))
		}
	}

	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// Chosen returns the selected item name, or false when the user quit.
func (p *Picker) Chosen() (string, bool) {
	if p.chosen < 0 {
		return "", false
	}
	return p.items[p.chosen].Name, true
}

// RunPicker shows items and returns the user's choice.
func RunPicker(title string, items []PickerItem) (string, bool, error) {
	p := NewPicker(title, items)
	if _, err := tea.NewProgram(p, tea.WithAltScreen()).Run(); err != nil {
		return "", false, err
	}
	name, ok := p.Chosen()
	return name, ok, nil
}
