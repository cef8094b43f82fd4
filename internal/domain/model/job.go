package model

import (
	"strconv"
	"time"

	"github.com/gigboard/backend/internal/domain/enums"
)

type Job struct {
	ID          int64                  `db:"id"`
	ClientID    string                 `db:"client_id"`
	Title       string                 `db:"title"`
	Description string                 `db:"description"`
	BudgetCents int64                  `db:"budget_cents"`
	Status      enums.ModerationStatus `db:"status"`
	ApprovedBy  *string                `db:"approved_by"`
	ApprovedAt  *time.Time             `db:"approved_at"`
	CreatedAt   time.Time              `db:"created_at"`
	UpdatedAt   time.Time              `db:"updated_at"`
}

func (j Job) Kind() enums.EntityKind                { return enums.EntityKindJob }
func (j Job) TargetID() string                      { return strconv.FormatInt(j.ID, 10) }
func (j Job) CurrentStatus() enums.ModerationStatus { return j.Status }

func (j Job) Visible() bool {
	return j.Status == enums.ModerationStatusOpen
}
