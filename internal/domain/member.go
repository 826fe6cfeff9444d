package domain

// RoomInfo is a read-only view for APIs (no tokens, no transport fields).
type RoomInfo struct {
	ID           RoomID `json:"roomId"`
	Participants int    `json:"participants"`
}
