package model

import (
	"time"

	"github.com/gigboard/backend/internal/domain/enums"
)

// Record is implemented by every entity that goes through moderation.
type Record interface {
	Kind() enums.EntityKind
	TargetID() string
	CurrentStatus() enums.ModerationStatus
}

// Transition is a single status write applied by a moderator.
// The write only lands when the current status is one of From.
type Transition struct {
	Kind    enums.EntityKind
	ID      string
	From    []enums.ModerationStatus
	To      enums.ModerationStatus
	AdminID string
	At      time.Time
	// Active is written to services.is_active when set.
	Active *bool
	// Note lands in rejection_reason (services) or admin_response (hire requests).
	Note *string
}
