package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/config"
)

func pickerDataset() *celltower.Dataset {
	return &celltower.Dataset{CellTowers: []celltower.Site{
		{Operator: "Swisscom"},
		{Operator: "Sunrise"},
		{Operator: "Swisscom"},
		{Operator: "Lidl"},
	}}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m OperatorPickerModel, keys ...string) OperatorPickerModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(OperatorPickerModel)
	}
	return m
}

func TestNewOperatorPickerModel(t *testing.T) {
	m := NewOperatorPickerModel(pickerDataset(), config.Default())
	require.Len(t, m.Choices, 3)
	assert.Equal(t, OperatorChoice{Name: "Swisscom", Layer: "Swisscom", Sites: 2, Selected: true}, m.Choices[0])
	assert.Equal(t, "", m.Choices[2].Layer, "unconfigured operator has no layer")
	assert.Equal(t, []string{"Swisscom", "Sunrise", "Lidl"}, m.Selection())
}

func TestOperatorPicker_Toggle(t *testing.T) {
	m := NewOperatorPickerModel(pickerDataset(), config.Default())

	m = press(m, "down", " ")
	assert.Equal(t, 1, m.Cursor)
	assert.Equal(t, []string{"Swisscom", "Lidl"}, m.Selection())

	m = press(m, "j", "j", "k", "x")
	assert.Equal(t, 1, m.Cursor, "cursor stays within bounds")
	assert.Equal(t, []string{"Swisscom", "Sunrise", "Lidl"}, m.Selection())

	m = press(m, "a")
	assert.Empty(t, m.Selection())
	m = press(m, "a")
	assert.Len(t, m.Selection(), 3)
}

func TestOperatorPicker_Confirm(t *testing.T) {
	m := NewOperatorPickerModel(pickerDataset(), config.Default())

	// Nothing selected: enter is ignored.
	m = press(m, "a", "enter")
	assert.False(t, m.Confirmed)

	m = press(m, " ", "enter")
	assert.True(t, m.Confirmed)
	assert.Equal(t, []string{"Swisscom"}, m.Selection())
}

func TestOperatorPicker_Quit(t *testing.T) {
	m := NewOperatorPickerModel(pickerDataset(), config.Default())
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestOperatorPicker_View(t *testing.T) {
	m := NewOperatorPickerModel(pickerDataset(), config.Default())
	v := m.View()
	assert.Contains(t, v, "Select Operators")
	assert.Contains(t, v, "Sunrise")
	assert.Contains(t, v, "3 of 3 selected")
}
