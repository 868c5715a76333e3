// Package menu implements the scene picker shown at startup.
package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/scenes"
	"github.com/akshara-arcade/akshara/internal/state"
)

func init() {
	scenes.Register("menu", func() engine.Scene { return New() })
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Scene is the interactive scene picker.
type Scene struct {
	env    *engine.Env
	art    string
	items  []scenes.SceneInfo
	cursor int
}

// New creates the menu scene.
func New() *Scene {
	return &Scene{}
}

// Key implements engine.Scene.
func (s *Scene) Key() string { return "menu" }

// Title implements engine.Scene.
func (s *Scene) Title() string { return "Main Menu" }

// Init loads the branding art and snapshots the catalog.
func (s *Scene) Init(ctx context.Context, env *engine.Env) error {
	s.env = env
	if env.Assets != nil {
		cat, err := env.Assets.Load(ctx, "branding")
		if err != nil {
			return err
		}
		if art, ok := cat.Asset("title_art"); ok {
			s.art = art.Text()
		}
	}
	for _, info := range scenes.List() {
		if info.Key == s.Key() {
			continue
		}
		s.items = append(s.items, info)
	}
	return nil
}

// Reset implements engine.Scene.
func (s *Scene) Reset(vp state.Viewport) {
	s.cursor = 0
}

// HandleKey implements engine.Scene.
func (s *Scene) HandleKey(key string) {
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case "enter", " ":
		if len(s.items) == 0 {
			return
		}
		selected := s.items[s.cursor]
		if s.env != nil && s.env.Dispatch != nil {
			//nolint:errcheck // menu navigation, nothing to do on failure
			s.env.Dispatch(state.Action{
				Type:    state.ActionChangeScene,
				Payload: state.SceneChange{Scene: selected.Key},
			})
		}
	}
}

// View implements engine.Scene.
func (s *Scene) View(width, height int) string {
	var b strings.Builder
	if s.art != "" {
		b.WriteString(dimStyle.Render(s.art))
		b.WriteString("\n")
	}
	b.WriteString(titleStyle.Render("Pick a lesson"))
	b.WriteString("\n\n")
	for i, item := range s.items {
		line := fmt.Sprintf("  %s", item.Title)
		if i == s.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %s", item.Title))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("up/down: move   enter: start   q: quit"))
	return b.String()
}
