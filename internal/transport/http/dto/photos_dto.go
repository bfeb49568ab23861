package dto

import "time"

type PhotoItem struct {
	ID                 int64     `json:"id"`
	Position           int       `json:"position"`
	URL                string    `json:"url,omitempty"`
	VerificationStatus string    `json:"verification_status"`
	RejectionReason    *string   `json:"rejection_reason,omitempty"`
	LikeCount          int       `json:"like_count"`
	CreatedAt          time.Time `json:"created_at"`
}

type PhotosResponse struct {
	Photos []PhotoItem `json:"photos"`
}

type PhotoLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
