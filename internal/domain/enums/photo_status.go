package enums

type PhotoStatus string

const (
	PhotoStatusNotApplied PhotoStatus = "NOT_APPLIED"
	PhotoStatusPending    PhotoStatus = "PENDING"
	PhotoStatusApproved   PhotoStatus = "APPROVED"
	PhotoStatusRejected   PhotoStatus = "REJECTED"
)
