package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/config"
	"github.com/matzehuels/celltower/pkg/render"
)

// errPickCancelled is returned when the picker is left without confirming.
var errPickCancelled = errors.New("operator selection cancelled")

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// OperatorPickerModel - Interactive operator selection
// =============================================================================

// OperatorChoice is one row of the picker.
type OperatorChoice struct {
	Name     string
	Layer    string // configured layer, "" when the operator is not on the map
	Sites    int
	Selected bool
}

// OperatorPickerModel is the bubbletea model for choosing which operators
// to render.
type OperatorPickerModel struct {
	Choices   []OperatorChoice
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewOperatorPickerModel lists the operators of d in first-seen order, all
// selected.
func NewOperatorPickerModel(d *celltower.Dataset, cfg *config.Config) OperatorPickerModel {
	counts := make(map[string]int)
	for _, s := range d.CellTowers {
		counts[s.Operator]++
	}
	var choices []OperatorChoice
	for _, op := range d.Operators() {
		layer, _ := render.Layer(cfg, op)
		choices = append(choices, OperatorChoice{Name: op, Layer: layer, Sites: counts[op], Selected: true})
	}
	return OperatorPickerModel{Choices: choices, Height: 15}
}

// Selection returns the names of the selected operators.
func (m OperatorPickerModel) Selection() []string {
	var names []string
	for _, c := range m.Choices {
		if c.Selected {
			names = append(names, c.Name)
		}
	}
	return names
}

func (m OperatorPickerModel) Init() tea.Cmd {
	return nil
}

func (m OperatorPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Choices) > 0 {
				m.Choices[m.Cursor].Selected = !m.Choices[m.Cursor].Selected
			}
		case "a":
			all := len(m.Selection()) == len(m.Choices)
			for i := range m.Choices {
				m.Choices[i].Selected = !all
			}
		case "enter":
			if len(m.Selection()) == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m OperatorPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Operators"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ render  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Choices))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := m.Choices[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if c.Selected {
			check = "[x]"
		}
		layer := c.Layer
		if layer == "" {
			layer = "—"
		}
		rows = append(rows, []string{cursor, check, c.Name, layer, fmt.Sprintf("%d", c.Sites)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Operator", "Layer", "Sites").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Choices) {
				return lipgloss.NewStyle()
			}
			c := m.Choices[idx]
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case c.Layer == "":
				return listDimStyle
			case c.Selected:
				return lipgloss.NewStyle().Foreground(colorGreen)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", len(m.Selection()), len(m.Choices))))

	return b.String()
}

// pickOperators runs the picker on the terminal and returns the chosen
// operators.
func pickOperators(ctx context.Context, d *celltower.Dataset, cfg *config.Config, in io.Reader, out io.Writer) ([]string, error) {
	model := NewOperatorPickerModel(d, cfg)
	if len(model.Choices) == 0 {
		return nil, nil
	}

	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("operator picker: %w", err)
	}
	m := final.(OperatorPickerModel)
	if !m.Confirmed {
		return nil, errPickCancelled
	}
	return m.Selection(), nil
}
