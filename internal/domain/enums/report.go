package enums

import "strings"

type ReportReason string

const (
	ReportReasonSpam    ReportReason = "spam"
	ReportReasonFake    ReportReason = "fake"
	ReportReasonAbusive ReportReason = "abusive"
	ReportReasonOther   ReportReason = "other"
)

func ParseReportReason(value string) (ReportReason, bool) {
	switch ReportReason(strings.ToLower(strings.TrimSpace(value))) {
	case ReportReasonSpam:
		return ReportReasonSpam, true
	case ReportReasonFake:
		return ReportReasonFake, true
	case ReportReasonAbusive:
		return ReportReasonAbusive, true
	case ReportReasonOther:
		return ReportReasonOther, true
	default:
		return "", false
	}
}

type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "OPEN"
	ReportStatusResolved ReportStatus = "RESOLVED"
)

type ReportAction string

const (
	ReportActionWarn    ReportAction = "WARN"
	ReportActionBan     ReportAction = "BAN"
	ReportActionDismiss ReportAction = "DISMISS"
)

func ParseReportAction(value string) (ReportAction, bool) {
	switch ReportAction(strings.ToUpper(strings.TrimSpace(value))) {
	case ReportActionWarn:
		return ReportActionWarn, true
	case ReportActionBan:
		return ReportActionBan, true
	case ReportActionDismiss:
		return ReportActionDismiss, true
	default:
		return "", false
	}
}
