package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/resources"
)

const (
	stateMenu = iota
	stateSim
)

// app lets the user pick a preset and then watches it.
type app struct {
	state, cursor int
	presets       []string
	logger        *slog.Logger
	err           error
	live          Model
}

func NewInteractiveApp(logger *slog.Logger) *app {
	return &app{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
	}
}

func (a app) Init() tea.Cmd { return nil }

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start()
	}
	return a, nil
}

func (a app) start() (app, tea.Cmd) {
	s := config.GetPreset(a.presets[a.cursor])
	exp, err := resources.NewExperiment(s, a.logger)
	if err == nil {
		err = exp.Setup(nil)
	}
	if err != nil {
		a.err = err
		return a, nil
	}
	a.err = nil
	a.live = NewModel(s.Name, exp.Manager(), s.Dt, s.Duration)
	a.state = stateSim
	return a, a.live.Init()
}

func (a app) View() string {
	if a.state == stateSim {
		return a.live.View()
	}

	var b strings.Builder
	selected := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true)
	name := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(CurrentTheme.Primary)
	b.WriteString("\n\n    " + TitleStyle.Render("PHYSIM") + "\n    " + Subtle.Render("rigid body scenarios") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, p := range a.presets {
		d := config.Presets[p].Description
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", selected.Render("▸"), name.Render(fmt.Sprintf("%-16s", p)), desc.Render(d)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", Subtle.Render(fmt.Sprintf("%-16s", p)), Subtle.Render(d)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + StatusFailed.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter watch  esc back  q quit") + "\n")
	return b.String()
}

func RunInteractive(logger *slog.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(logger), tea.WithAltScreen()).Run()
	return err
}
