package model

import "time"

// AdminAction is one append-only audit log row.
type AdminAction struct {
	ID         int64     `db:"id"`
	AdminID    string    `db:"admin_id"`
	Action     string    `db:"action"`
	TargetType string    `db:"target_type"`
	TargetID   string    `db:"target_id"`
	Details    *string   `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}
