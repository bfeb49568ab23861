package dto

import "time"

type DeckCandidate struct {
	UserID    int64     `json:"user_id"`
	Nickname  string    `json:"nickname"`
	School    string    `json:"school"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DeckResponse struct {
	Candidates []DeckCandidate `json:"candidates"`
}

type ResetPassesResponse struct {
	OK      bool  `json:"ok"`
	Cleared int64 `json:"cleared"`
}
