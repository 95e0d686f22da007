package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hikari-care/attendance-backend-go/internal/domain/audit"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepository{db: db}
}

// Create implements audit.AuditRepository. The table is append-only; there
// is deliberately no update or delete method on this repository.
func (a *auditRepository) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, a.db)

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO audit_logs (
			id, admin_id, action_type, target_type, target_id,
			old_value, new_value, reason, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.AdminID,
		entry.ActionType,
		entry.TargetType,
		entry.TargetID,
		entry.OldValue,
		entry.NewValue,
		entry.Reason,
		entry.IPAddress,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to create audit entry: %w", err)
	}

	return entry, nil
}

// List implements audit.AuditRepository.
func (a *auditRepository) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.AdminID != nil && *filter.AdminID != "" {
		conditions = append(conditions, fmt.Sprintf("admin_id = $%d", argIdx))
		args = append(args, *filter.AdminID)
		argIdx++
	}

	if filter.ActionType != nil && *filter.ActionType != "" {
		conditions = append(conditions, fmt.Sprintf("action_type = $%d", argIdx))
		args = append(args, *filter.ActionType)
		argIdx++
	}

	if filter.TargetID != nil && *filter.TargetID != "" {
		conditions = append(conditions, fmt.Sprintf("target_id = $%d", argIdx))
		args = append(args, *filter.TargetID)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("created_at < ($%d::date + interval '1 day')", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	baseWhere := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM audit_logs WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(`
		SELECT id, admin_id, action_type, target_type, target_id,
		       old_value, new_value, reason, ip_address, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)

	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		err := rows.Scan(
			&e.ID, &e.AdminID, &e.ActionType, &e.TargetType, &e.TargetID,
			&e.OldValue, &e.NewValue, &e.Reason, &e.IPAddress, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, total, nil
}
