package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gigboard/backend/internal/domain/model"
)

// AppendAdminAction inserts one audit row. The table has no update or delete path.
func (s *Store) AppendAdminAction(ctx context.Context, action model.AdminAction) (model.AdminAction, error) {
	if err := s.ready(); err != nil {
		return model.AdminAction{}, err
	}
	if strings.TrimSpace(action.AdminID) == "" || strings.TrimSpace(action.Action) == "" {
		return model.AdminAction{}, fmt.Errorf("invalid admin action payload")
	}

	created, err := adminActionsTable.collectOne(s.pool.Query(ctx, `
INSERT INTO admin_actions (admin_id, action, target_type, target_id, details, created_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
`+adminActionsTable.returning(),
		action.AdminID,
		action.Action,
		action.TargetType,
		action.TargetID,
		action.Details,
		nullTime(action.CreatedAt),
	))
	if err != nil {
		return model.AdminAction{}, fmt.Errorf("append admin action: %w", err)
	}

	return created, nil
}

func (s *Store) ListAdminActions(ctx context.Context, limit int) ([]model.AdminAction, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	return adminActionsTable.collect(s.pool.Query(ctx, adminActionsTable.selectFrom()+`
ORDER BY created_at DESC, id DESC
LIMIT $1
`, limit))
}
