// Package state implements the application state container: a single
// state tree updated only through pure reducer functions, with an
// ordered middleware pipeline, subscriber notification and a bounded
// undo/redo history.
package state

// AppState is the root of the application state tree. Callers must treat
// the tree as read-only; updates go through Store.Dispatch, and every
// update replaces the affected branches rather than mutating in place.
type AppState struct {
	App  AppSection
	User UserSection
	Game GameSection
	UI   UISection
}

// AppSection holds process-level flags.
type AppSection struct {
	Initialized bool
	Loading     bool
	LastError   string
	Viewport    Viewport
}

// Viewport describes the current terminal dimensions.
type Viewport struct {
	Width  int
	Height int
}

// UserSection holds the player's identity, settings and progress.
type UserSection struct {
	Profile     Profile
	Preferences Preferences
	Progress    Progress
}

// Profile identifies the player.
type Profile struct {
	ID   string
	Name string
}

// Preferences are the player's persisted settings.
type Preferences struct {
	Locale       string `json:"locale"`
	Theme        string `json:"theme"`
	SoundEnabled bool   `json:"sound_enabled"`
	Difficulty   string `json:"difficulty"`
}

// Progress records what the player has completed and scored.
type Progress struct {
	CompletedLessons []string       `json:"completed_lessons"`
	Scores           map[string]int `json:"scores"`
	Achievements     []string       `json:"achievements"`
	PlayTimeSecs     int            `json:"play_time_secs"`
}

// GameSection tracks the active scene and the play lifecycle.
type GameSection struct {
	CurrentScene  string
	PreviousScene string
	ScenePayload  map[string]any
	IsPaused      bool
	IsGameActive  bool
}

// UISection tracks transient UI chrome.
type UISection struct {
	ActiveModal        *Modal
	ActiveNotification *Notification
	Loading            bool
}

// Modal describes an open modal dialog.
type Modal struct {
	ID    string
	Title string
	Body  string
}

// Notification describes a transient on-screen message.
type Notification struct {
	Kind    string
	Message string
}

// Initial returns the state tree a fresh store starts from.
func Initial() *AppState {
	return &AppState{
		User: UserSection{
			Preferences: Preferences{
				Locale:       "en",
				Theme:        "default",
				SoundEnabled: true,
				Difficulty:   "normal",
			},
			Progress: Progress{
				Scores: make(map[string]int),
			},
		},
	}
}

// Clone returns a structurally independent deep copy of the state tree.
// History snapshots and restores go through Clone so no snapshot aliases
// live state. The copy is explicit and typed; adding a reference-typed
// field to the tree means extending Clone as well.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	c := *s
	c.User.Progress = s.User.Progress.clone()
	c.Game.ScenePayload = cloneAnyMap(s.Game.ScenePayload)
	if s.UI.ActiveModal != nil {
		m := *s.UI.ActiveModal
		c.UI.ActiveModal = &m
	}
	if s.UI.ActiveNotification != nil {
		n := *s.UI.ActiveNotification
		c.UI.ActiveNotification = &n
	}
	return &c
}

func (p Progress) clone() Progress {
	c := p
	c.CompletedLessons = append([]string(nil), p.CompletedLessons...)
	c.Achievements = append([]string(nil), p.Achievements...)
	if p.Scores != nil {
		c.Scores = make(map[string]int, len(p.Scores))
		for k, v := range p.Scores {
			c.Scores[k] = v
		}
	}
	return c
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
