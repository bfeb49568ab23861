package dto

type SwipeRequest struct {
	TargetUserID int64  `json:"target_user_id,omitempty"`
	PhotoID      int64  `json:"photo_id,omitempty"`
	Action       string `json:"action"`
}

type SwipeResponse struct {
	OK      bool `json:"ok"`
	Matched bool `json:"matched"`
}
