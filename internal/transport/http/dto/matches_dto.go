package dto

import "time"

type MatchItem struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	Nickname     string    `json:"nickname"`
	School       string    `json:"school"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Matches []MatchItem `json:"matches"`
}

type BlockRequest struct {
	TargetUserID int64 `json:"target_user_id"`
}

type ReportRequest struct {
	TargetUserID int64  `json:"target_user_id"`
	Reason       string `json:"reason"`
	Details      string `json:"details,omitempty"`
}
