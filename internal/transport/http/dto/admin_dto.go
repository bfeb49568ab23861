package dto

import "time"

type RejectPhotoRequest struct {
	Reason string `json:"reason"`
}

type ResolveReportRequest struct {
	Action string `json:"action"`
}

type ReportItem struct {
	ID             int64     `json:"id"`
	ReporterUserID int64     `json:"reporter_user_id"`
	TargetUserID   int64     `json:"target_user_id"`
	Reason         string    `json:"reason"`
	Details        string    `json:"details,omitempty"`
	Status         string    `json:"status"`
	Action         *string   `json:"action,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReportsResponse struct {
	Reports []ReportItem `json:"reports"`
}
