package model

import (
	"strconv"
	"time"

	"github.com/gigboard/backend/internal/domain/enums"
)

// Service is a freelancer's service listing.
type Service struct {
	ID              int64                  `db:"id"`
	FreelancerID    string                 `db:"freelancer_id"`
	Title           string                 `db:"title"`
	Description     string                 `db:"description"`
	Category        string                 `db:"category"`
	PriceCents      int64                  `db:"price_cents"`
	ImageKey        *string                `db:"image_key"`
	Status          enums.ModerationStatus `db:"status"`
	IsActive        bool                   `db:"is_active"`
	ApprovedBy      *string                `db:"approved_by"`
	ApprovedAt      *time.Time             `db:"approved_at"`
	RejectionReason *string                `db:"rejection_reason"`
	CreatedAt       time.Time              `db:"created_at"`
	UpdatedAt       time.Time              `db:"updated_at"`

	// ImageURL is a presigned link filled in for moderators; it is never stored.
	ImageURL string `db:"-"`
}

func (s Service) Kind() enums.EntityKind                { return enums.EntityKindService }
func (s Service) TargetID() string                      { return strconv.FormatInt(s.ID, 10) }
func (s Service) CurrentStatus() enums.ModerationStatus { return s.Status }

// Visible reports whether the listing belongs in the public catalog.
func (s Service) Visible() bool {
	return s.Status == enums.ModerationStatusApproved && s.IsActive
}
