package downloader

// WebSocket event types for download queue activity.
const (
	EventDownloadStarted   = "download:started"
	EventDownloadCompleted = "download:completed"
	EventDownloadFailed    = "download:failed"
	EventQueueDrained      = "download:queue:drained"
)

// DownloadStartedPayload is sent when an item begins downloading.
type DownloadStartedPayload struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Urgency int    `json:"urgency"`
	Attempt int    `json:"attempt"`
}

// DownloadCompletedPayload is sent when a download finishes.
type DownloadCompletedPayload struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Path   string `json:"path"`
}

// DownloadFailedPayload is sent when an attempt fails.
type DownloadFailedPayload struct {
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	Attempt   int    `json:"attempt"`
	Exhausted bool   `json:"exhausted"`
	Error     string `json:"error"`
}

// QueueDrainedPayload is sent when a drain pass finishes.
type QueueDrainedPayload struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
