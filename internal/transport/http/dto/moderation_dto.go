package dto

import (
	"time"

	"github.com/gigboard/backend/internal/domain/model"
)

// DecisionRequest is the optional body of approve/reject calls. Reason is
// used by users, services and jobs; Response by hire requests.
type DecisionRequest struct {
	Reason   string `json:"reason,omitempty"`
	Response string `json:"response,omitempty"`
}

type PendingSummaryResponse struct {
	Users        int `json:"users"`
	Services     int `json:"services"`
	Jobs         int `json:"jobs"`
	HireRequests int `json:"hireRequests"`
	Total        int `json:"total"`
}

type AdminActionResponse struct {
	ID         int64     `json:"id"`
	AdminID    string    `json:"adminId"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Details    *string   `json:"details"`
	CreatedAt  time.Time `json:"createdAt"`
}

func AdminActionFromModel(a model.AdminAction) AdminActionResponse {
	return AdminActionResponse{
		ID:         a.ID,
		AdminID:    a.AdminID,
		Action:     a.Action,
		TargetType: a.TargetType,
		TargetID:   a.TargetID,
		Details:    a.Details,
		CreatedAt:  a.CreatedAt,
	}
}

// RecordFromModel converts any moderated record into its JSON shape.
func RecordFromModel(record model.Record) any {
	switch v := record.(type) {
	case model.User:
		return UserFromModel(v)
	case model.Service:
		return ServiceFromModel(v)
	case model.Job:
		return JobFromModel(v)
	case model.HireRequest:
		return HireRequestFromModel(v)
	default:
		return record
	}
}
