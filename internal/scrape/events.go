package scrape

// WebSocket event types for scrape cycles.
const (
	EventScrapeStarted   = "scrape:started"
	EventScrapeCompleted = "scrape:completed"
)

// ScrapeStartedPayload is sent when a scrape cycle begins.
type ScrapeStartedPayload struct {
	Stations int `json:"stations"`
}

// ScrapeCompletedPayload is sent when a scrape cycle finishes.
type ScrapeCompletedPayload struct {
	Stations  int `json:"stations"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Songs     int `json:"songs"`
}
