package alphabet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/akshara-arcade/akshara/internal/assets"
	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/state"
)

func testLetters() []letter {
	return []letter{
		{Glyph: "ಅ", Roman: "a"},
		{Glyph: "ಆ", Roman: "aa"},
		{Glyph: "ಇ", Roman: "i"},
		{Glyph: "ಈ", Roman: "ii"},
		{Glyph: "ಉ", Roman: "u"},
	}
}

type actionRecorder struct {
	actions []state.Action
}

func (r *actionRecorder) dispatch(a state.Action) error {
	r.actions = append(r.actions, a)
	return nil
}

func (r *actionRecorder) types() []string {
	out := make([]string, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a.Type)
	}
	return out
}

func newTestScene() (*Scene, *actionRecorder) {
	rec := &actionRecorder{}
	s := New()
	s.env = &engine.Env{Dispatch: rec.dispatch}
	s.letters = testLetters()
	return s, rec
}

func TestInitLoadsLetters(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	content := `{"letters":[{"glyph":"ಅ","roman":"a"},{"glyph":"ಆ","roman":"aa"},{"glyph":"ಇ","roman":"i"},{"glyph":"ಈ","roman":"ii"}]}`
	if err := os.WriteFile(filepath.Join(dir, "data", "alphabet.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	manifest := assets.Manifest{Categories: map[string][]assets.Descriptor{
		"alphabet": {{Type: assets.TypeJSON, Key: "letters", Path: "data/alphabet.json"}},
	}}
	env := &engine.Env{Assets: assets.NewLibrary(manifest, dir, nil)}

	s := New()
	if err := s.Init(context.Background(), env); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if len(s.letters) != 4 {
		t.Errorf("Loaded %d letters, want 4", len(s.letters))
	}
}

func TestInitRejectsTooFewLetters(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	content := `{"letters":[{"glyph":"ಅ","roman":"a"}]}`
	if err := os.WriteFile(filepath.Join(dir, "data", "alphabet.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	manifest := assets.Manifest{Categories: map[string][]assets.Descriptor{
		"alphabet": {{Type: assets.TypeJSON, Key: "letters", Path: "data/alphabet.json"}},
	}}
	env := &engine.Env{Assets: assets.NewLibrary(manifest, dir, nil)}

	if err := New().Init(context.Background(), env); err == nil {
		t.Error("Init() accepted a letter set smaller than the choice count")
	}
}

func TestChoicesContainCorrectAnswer(t *testing.T) {
	s, _ := newTestScene()
	s.Reset(state.Viewport{})

	for q := 0; q < len(s.letters); q++ {
		s.index = q
		choices := s.choices()

		found := 0
		for _, c := range choices {
			if c == s.letters[q].Roman {
				found++
			}
		}
		if found != 1 {
			t.Errorf("Question %d: correct answer appears %d times in %v", q, found, choices)
		}
		if got := choices[q%choiceCount]; got != s.letters[q].Roman {
			t.Errorf("Question %d: correct answer at %d = %q, want %q", q, q%choiceCount, got, s.letters[q].Roman)
		}
	}
}

func TestResetStartsGame(t *testing.T) {
	s, rec := newTestScene()
	s.Reset(state.Viewport{})

	types := rec.types()
	if len(types) != 1 || types[0] != state.ActionGameStart {
		t.Errorf("Reset dispatched %v, want [GAME_START]", types)
	}
}

func TestPerfectRunRecordsLessonAndAchievement(t *testing.T) {
	s, rec := newTestScene()
	s.Reset(state.Viewport{})

	for !s.done {
		correct := s.index%choiceCount + 1
		s.HandleKey(string(rune('0' + correct)))
	}

	if s.score != len(s.letters) {
		t.Fatalf("Score = %d, want %d", s.score, len(s.letters))
	}

	var upd state.ProgressUpdate
	foundProgress, foundEnd := false, false
	for _, a := range rec.actions {
		switch a.Type {
		case state.ActionUpdateProgress:
			upd = a.Payload.(state.ProgressUpdate)
			foundProgress = true
		case state.ActionGameEnd:
			foundEnd = true
		}
	}
	if !foundProgress || !foundEnd {
		t.Fatalf("Finish dispatched %v, want progress and game end", rec.types())
	}
	if upd.Scores["alphabet"] != len(s.letters) {
		t.Errorf("Recorded score = %d", upd.Scores["alphabet"])
	}
	if upd.CompletedLesson != "alphabet" || upd.Achievement != "perfect_alphabet" {
		t.Errorf("Perfect run recorded %+v", upd)
	}
}

func TestImperfectRunRecordsScoreOnly(t *testing.T) {
	s, rec := newTestScene()
	s.Reset(state.Viewport{})

	// Answer everything with choice 1; only questions whose correct
	// answer sits at index 0 score.
	for !s.done {
		s.HandleKey("1")
	}

	var upd state.ProgressUpdate
	for _, a := range rec.actions {
		if a.Type == state.ActionUpdateProgress {
			upd = a.Payload.(state.ProgressUpdate)
		}
	}
	if upd.CompletedLesson != "" || upd.Achievement != "" {
		t.Errorf("Imperfect run recorded %+v", upd)
	}
	if upd.Scores["alphabet"] >= len(s.letters) {
		t.Errorf("Imperfect run scored %d of %d", upd.Scores["alphabet"], len(s.letters))
	}
}

func TestBackKeyReturnsToMenu(t *testing.T) {
	s, rec := newTestScene()
	s.Reset(state.Viewport{})

	s.HandleKey("b")

	types := rec.types()
	want := []string{state.ActionGameStart, state.ActionGameEnd, state.ActionChangeScene}
	if len(types) != len(want) {
		t.Fatalf("Dispatched %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("Dispatched %v, want %v", types, want)
		}
	}
	change := rec.actions[2].Payload.(state.SceneChange)
	if change.Scene != "menu" {
		t.Errorf("Back navigated to %q, want menu", change.Scene)
	}
}

func TestRetryRestartsAfterDone(t *testing.T) {
	s, _ := newTestScene()
	s.Reset(state.Viewport{})

	// r mid-run is ignored
	s.HandleKey("r")
	if s.index != 0 || s.done {
		t.Fatal("Retry key acted mid-run")
	}

	for !s.done {
		s.HandleKey("1")
	}
	s.HandleKey("r")

	if s.done || s.index != 0 || s.score != 0 {
		t.Errorf("Retry left state index=%d score=%d done=%v", s.index, s.score, s.done)
	}
}
