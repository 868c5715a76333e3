package state

// Action describes a single state transition request. Type is required
// and must be non-empty; Payload carries the action-specific data and is
// type-asserted by the reducer.
type Action struct {
	Type    string
	Payload any
}

// Action types understood by the built-in reducer. Dispatching a type not
// listed here leaves the state untouched.
const (
	ActionInitializeApp     = "APP_INITIALIZE"
	ActionSetViewport       = "APP_SET_VIEWPORT"
	ActionSetError          = "APP_SET_ERROR"
	ActionSetLoading        = "APP_SET_LOADING"
	ActionUpdateProfile     = "USER_UPDATE_PROFILE"
	ActionUpdatePreferences = "USER_UPDATE_PREFERENCES"
	ActionUpdateProgress    = "USER_UPDATE_PROGRESS"
	ActionChangeScene       = "SCENE_CHANGE"
	ActionGameStart         = "GAME_START"
	ActionGameEnd           = "GAME_END"
	ActionGamePause         = "GAME_PAUSE"
	ActionGameResume        = "GAME_RESUME"
	ActionShowModal         = "UI_SHOW_MODAL"
	ActionHideModal         = "UI_HIDE_MODAL"
	ActionShowNotification  = "UI_SHOW_NOTIFICATION"
	ActionHideNotification  = "UI_HIDE_NOTIFICATION"
)

// SceneChange is the payload for ActionChangeScene.
type SceneChange struct {
	Scene   string
	Payload map[string]any
}

// ProgressUpdate is the payload for ActionUpdateProgress. Zero fields are
// ignored; lessons and achievements are appended if not already present,
// scores overwrite per scene key.
type ProgressUpdate struct {
	CompletedLesson string
	Achievement     string
	Scores          map[string]int
	PlayTimeSecs    int
}
