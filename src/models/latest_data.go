package models

// -----------------------------------------------------------------------------
// WebSocket payloads
// -----------------------------------------------------------------------------

const (
	PayloadInitial = "INITIAL"
	PayloadUpdate  = "UPDATE"
	PayloadHistory = "HISTORY"
)

type MLatestData struct {
	Type      string             `json:"type"`
	Latest    *MBreadthSnapshot  `json:"latest,omitempty"`
	Series    []MBreadthSnapshot `json:"series,omitempty"`
	Summary   *MSnapshotSummary  `json:"summary,omitempty"`
	View      string             `json:"view,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string `json:"command"`
	View    string `json:"view"` // today, week, month, day, range
	Date    string `json:"date"`
	From    string `json:"from"`
	To      string `json:"to"`
}
