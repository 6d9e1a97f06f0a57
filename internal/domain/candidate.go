package domain

// Candidate is one validated, locally saved image with assembled metadata,
// not yet part of the persistent upload queue.
type Candidate struct {
	ID       string
	FilePath string
	Category string
	Tags     []string
	Context  []ContextEntry
}

// ContextEntry keeps candidate context keys in assembly order so the
// pipe-joined context string stays deterministic.
type ContextEntry struct {
	Key   string
	Value string
}

// QueueEntry is the durable record representing a candidate ready for the
// external publisher. The publisher treats every field as an opaque string.
type QueueEntry struct {
	FilePath string `json:"file_path"`
	PublicID string `json:"public_id"`
	Tags     string `json:"tags"`
	Context  string `json:"context"`
}

// DailyStat counts entries newly queued on one calendar date.
type DailyStat struct {
	Scraped int `json:"scraped"`
}

// AgentState is the persisted root: cumulative counters plus the
// deduplicated pending-upload queue. Entries in PendingUploads are unique
// by FilePath; TotalImagesScraped never decreases across runs.
type AgentState struct {
	TotalImagesScraped int                  `json:"total_images_scraped"`
	PendingUploads     []QueueEntry         `json:"pending_uploads"`
	DailyStats         map[string]DailyStat `json:"daily_stats"`
	LastRun            string               `json:"last_run"`
}

// Normalize fills absent collections so loaded state always carries every
// top-level key.
func (s *AgentState) Normalize() {
	if s.PendingUploads == nil {
		s.PendingUploads = []QueueEntry{}
	}
	if s.DailyStats == nil {
		s.DailyStats = map[string]DailyStat{}
	}
}
