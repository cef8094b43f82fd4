package enums

type ModerationStatus string

const (
	ModerationStatusPending   ModerationStatus = "pending"
	ModerationStatusApproved  ModerationStatus = "approved"
	ModerationStatusRejected  ModerationStatus = "rejected"
	ModerationStatusSuspended ModerationStatus = "suspended"
	ModerationStatusOpen      ModerationStatus = "open"
	ModerationStatusClosed    ModerationStatus = "closed"
	ModerationStatusCompleted ModerationStatus = "completed"
)

// LocksAccount reports whether a user in this status may not hold sessions.
func (s ModerationStatus) LocksAccount() bool {
	return s == ModerationStatusRejected || s == ModerationStatusSuspended
}
