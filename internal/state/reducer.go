package state

// Reducer maps (previous state, action) to the next state. Reducers must
// be pure: no mutation of prev, no side effects. Returning prev unchanged
// (same pointer) signals "no transition" and suppresses notification and
// history recording.
type Reducer func(prev *AppState, action Action) *AppState

// Reduce is the built-in reducer covering the application action set.
// Every recognized action returns a fresh root with only the affected
// branch replaced; unrecognized actions return prev as-is.
func Reduce(prev *AppState, action Action) *AppState {
	switch action.Type {
	case ActionInitializeApp:
		if prev.App.Initialized {
			return prev
		}
		next := *prev
		next.App.Initialized = true
		return &next

	case ActionSetViewport:
		vp, ok := action.Payload.(Viewport)
		if !ok || prev.App.Viewport == vp {
			return prev
		}
		next := *prev
		next.App.Viewport = vp
		return &next

	case ActionSetError:
		msg, _ := action.Payload.(string)
		if err, ok := action.Payload.(error); ok {
			msg = err.Error()
		}
		if prev.App.LastError == msg {
			return prev
		}
		next := *prev
		next.App.LastError = msg
		return &next

	case ActionSetLoading:
		loading, ok := action.Payload.(bool)
		if !ok || prev.App.Loading == loading {
			return prev
		}
		next := *prev
		next.App.Loading = loading
		return &next

	case ActionUpdateProfile:
		profile, ok := action.Payload.(Profile)
		if !ok || prev.User.Profile == profile {
			return prev
		}
		next := *prev
		next.User.Profile = profile
		return &next

	case ActionUpdatePreferences:
		prefs, ok := action.Payload.(Preferences)
		if !ok || prev.User.Preferences == prefs {
			return prev
		}
		next := *prev
		next.User.Preferences = prefs
		return &next

	case ActionUpdateProgress:
		upd, ok := action.Payload.(ProgressUpdate)
		if !ok {
			return prev
		}
		next := *prev
		next.User.Progress = applyProgress(prev.User.Progress, upd)
		return &next

	case ActionChangeScene:
		change, ok := action.Payload.(SceneChange)
		if !ok || change.Scene == "" || change.Scene == prev.Game.CurrentScene {
			return prev
		}
		next := *prev
		next.Game.PreviousScene = prev.Game.CurrentScene
		next.Game.CurrentScene = change.Scene
		next.Game.ScenePayload = change.Payload
		return &next

	case ActionGameStart:
		if prev.Game.IsGameActive {
			return prev
		}
		next := *prev
		next.Game.IsGameActive = true
		next.Game.IsPaused = false
		return &next

	case ActionGameEnd:
		if !prev.Game.IsGameActive && !prev.Game.IsPaused {
			return prev
		}
		next := *prev
		next.Game.IsGameActive = false
		next.Game.IsPaused = false
		return &next

	case ActionGamePause:
		if prev.Game.IsPaused {
			return prev
		}
		next := *prev
		next.Game.IsPaused = true
		return &next

	case ActionGameResume:
		if !prev.Game.IsPaused {
			return prev
		}
		next := *prev
		next.Game.IsPaused = false
		return &next

	case ActionShowModal:
		modal, ok := action.Payload.(Modal)
		if !ok {
			return prev
		}
		next := *prev
		next.UI.ActiveModal = &modal
		return &next

	case ActionHideModal:
		if prev.UI.ActiveModal == nil {
			return prev
		}
		next := *prev
		next.UI.ActiveModal = nil
		return &next

	case ActionShowNotification:
		note, ok := action.Payload.(Notification)
		if !ok {
			return prev
		}
		next := *prev
		next.UI.ActiveNotification = &note
		return &next

	case ActionHideNotification:
		if prev.UI.ActiveNotification == nil {
			return prev
		}
		next := *prev
		next.UI.ActiveNotification = nil
		return &next
	}

	return prev
}

// applyProgress merges an update into a progress record, replacing every
// branch it touches and sharing the rest.
func applyProgress(p Progress, upd ProgressUpdate) Progress {
	next := p

	if upd.CompletedLesson != "" && !contains(p.CompletedLessons, upd.CompletedLesson) {
		next.CompletedLessons = append(append([]string(nil), p.CompletedLessons...), upd.CompletedLesson)
	}
	if upd.Achievement != "" && !contains(p.Achievements, upd.Achievement) {
		next.Achievements = append(append([]string(nil), p.Achievements...), upd.Achievement)
	}
	if len(upd.Scores) > 0 {
		scores := make(map[string]int, len(p.Scores)+len(upd.Scores))
		for k, v := range p.Scores {
			scores[k] = v
		}
		for k, v := range upd.Scores {
			scores[k] = v
		}
		next.Scores = scores
	}
	if upd.PlayTimeSecs > 0 {
		next.PlayTimeSecs = p.PlayTimeSecs + upd.PlayTimeSecs
	}
	return next
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
