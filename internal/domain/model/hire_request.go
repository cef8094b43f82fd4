package model

import (
	"strconv"
	"time"

	"github.com/gigboard/backend/internal/domain/enums"
)

// HireRequest is a client's offer to a freelancer, optionally tied to one of the freelancer's services.
type HireRequest struct {
	ID            int64                  `db:"id"`
	ClientID      string                 `db:"client_id"`
	FreelancerID  string                 `db:"freelancer_id"`
	ServiceID     *int64                 `db:"service_id"`
	Message       string                 `db:"message"`
	Status        enums.ModerationStatus `db:"status"`
	AdminResponse *string                `db:"admin_response"`
	ApprovedBy    *string                `db:"approved_by"`
	ApprovedAt    *time.Time             `db:"approved_at"`
	CreatedAt     time.Time              `db:"created_at"`
	UpdatedAt     time.Time              `db:"updated_at"`
}

func (h HireRequest) Kind() enums.EntityKind                { return enums.EntityKindHireRequest }
func (h HireRequest) TargetID() string                      { return strconv.FormatInt(h.ID, 10) }
func (h HireRequest) CurrentStatus() enums.ModerationStatus { return h.Status }
