package grade

// WebSocket event types for grade builds.
const (
	EventBlockBuilt       = "grade:block:built"
	EventFullDayStarted   = "grade:fullday:started"
	EventFullDayCompleted = "grade:fullday:completed"
)

// BlockBuiltPayload is sent after every block build.
type BlockBuiltPayload struct {
	Weekday   string `json:"weekday"`
	Block     string `json:"block"`
	Program   string `json:"program"`
	Processed int    `json:"songsProcessed"`
	Found     int    `json:"songsFound"`
	Missing   int    `json:"songsMissing"`
}

// FullDayStartedPayload is sent when a full-day build begins.
type FullDayStartedPayload struct {
	Weekday string `json:"weekday"`
}

// FullDayCompletedPayload is sent when a full-day build finishes.
type FullDayCompletedPayload struct {
	Weekday   string `json:"weekday"`
	Blocks    int    `json:"blocks"`
	Processed int    `json:"songsProcessed"`
	Found     int    `json:"songsFound"`
	Missing   int    `json:"songsMissing"`
}
