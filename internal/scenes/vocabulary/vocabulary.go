// Package vocabulary implements the flashcard scene: one word per card,
// flip for the meaning, step through the deck.
package vocabulary

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
	scenes.Register("vocabulary", func() engine.Scene { return New() })
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 4).
			Align(lipgloss.Center)
	wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type word struct {
	Word    string `json:"word"`
	Roman   string `json:"roman"`
	Meaning string `json:"meaning"`
}

// Scene is the flashcard deck.
type Scene struct {
	env     *engine.Env
	words   []word
	index   int
	flipped bool
	done    bool
}

// New creates the vocabulary flashcard scene.
func New() *Scene {
	return &Scene{}
}

// Key implements engine.Scene.
func (s *Scene) Key() string { return "vocabulary" }

// Title implements engine.Scene.
func (s *Scene) Title() string { return "Vocabulary Flashcards" }

// Init loads the deck from the vocabulary content category.
func (s *Scene) Init(ctx context.Context, env *engine.Env) error {
	s.env = env
	cat, err := env.Assets.Load(ctx, "vocabulary")
	if err != nil {
		return err
	}
	asset, ok := cat.Asset("words")
	if !ok {
		return fmt.Errorf("vocabulary: category has no %q asset", "words")
	}
	var payload struct {
		Words []word `json:"words"`
	}
	if err := asset.DecodeJSON(&payload); err != nil {
		return err
	}
	if len(payload.Words) == 0 {
		return fmt.Errorf("vocabulary: deck is empty")
	}
	s.words = payload.Words
	return nil
}

// Reset implements engine.Scene.
func (s *Scene) Reset(vp state.Viewport) {
	s.index = 0
	s.flipped = false
	s.done = false
	s.dispatch(state.Action{Type: state.ActionGameStart})
}

// HandleKey implements engine.Scene.
func (s *Scene) HandleKey(key string) {
	switch key {
	case "b", "esc":
		s.dispatch(state.Action{Type: state.ActionGameEnd})
		s.dispatch(state.Action{
			Type:    state.ActionChangeScene,
			Payload: state.SceneChange{Scene: "menu"},
		})
	case " ", "enter":
		if !s.done {
			s.flipped = !s.flipped
		}
	case "n", "right":
		if s.done {
			return
		}
		s.index++
		s.flipped = false
		if s.index >= len(s.words) {
			s.finish()
		}
	case "r":
		if s.done {
			s.Reset(state.Viewport{})
		}
	}
}

func (s *Scene) finish() {
	s.done = true
	s.dispatch(state.Action{
		Type: state.ActionUpdateProgress,
		Payload: state.ProgressUpdate{
			CompletedLesson: s.Key(),
			Scores:          map[string]int{s.Key(): len(s.words)},
		},
	})
	s.dispatch(state.Action{Type: state.ActionGameEnd})
}

func (s *Scene) dispatch(a state.Action) {
	if s.env == nil || s.env.Dispatch == nil {
		return
	}
	if err := s.env.Dispatch(a); err != nil && s.env.Logger != nil {
		s.env.Logger.Warn("dispatch failed", "type", a.Type, "err", err)
	}
}

// View implements engine.Scene.
func (s *Scene) View(width, height int) string {
	var b strings.Builder
	if s.done {
		fmt.Fprintf(&b, "Deck finished: %d cards\n\n", len(s.words))
		b.WriteString(dimStyle.Render("r: again   b: back to menu"))
		return b.String()
	}

	card := s.words[s.index]
	face := wordStyle.Render(card.Word) + "\n" + card.Roman
	if s.flipped {
		face = card.Meaning
	}
	fmt.Fprintf(&b, "Card %d of %d\n\n", s.index+1, len(s.words))
	b.WriteString(cardStyle.Render(face))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("space: flip   n: next   b: back to menu"))
	return b.String()
}
