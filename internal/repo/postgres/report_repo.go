package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

var ErrReportNotFound = errors.New("report not found")

type ReportRepo struct {
	pool *pgxpool.Pool
}

type ReportRecord struct {
	ID             int64
	ReporterUserID int64
	TargetUserID   int64
	Reason         string
	Details        string
	Status         string
	Action         *string
	CreatedAt      time.Time
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, tx pgx.Tx, reporterUserID, targetUserID int64, reason enums.ReportReason, details string) error {
	if reporterUserID <= 0 || targetUserID <= 0 || reporterUserID == targetUserID {
		return fmt.Errorf("invalid report payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO reports (reporter_user_id, target_user_id, reason, details, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'OPEN', NOW(), NOW())
`, reporterUserID, targetUserID, reason, strings.TrimSpace(details)); err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	return nil
}

func (r *ReportRepo) GetByID(ctx context.Context, reportID int64) (ReportRecord, error) {
	if r.pool == nil {
		return ReportRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if reportID <= 0 {
		return ReportRecord{}, fmt.Errorf("invalid report id")
	}

	var rec ReportRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, reporter_user_id, target_user_id, reason, details, status, action, created_at
FROM reports
WHERE id = $1
`, reportID).Scan(
		&rec.ID,
		&rec.ReporterUserID,
		&rec.TargetUserID,
		&rec.Reason,
		&rec.Details,
		&rec.Status,
		&rec.Action,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReportRecord{}, ErrReportNotFound
		}
		return ReportRecord{}, fmt.Errorf("get report: %w", err)
	}

	return rec, nil
}

func (r *ReportRepo) ListByStatus(ctx context.Context, status enums.ReportStatus, limit int) ([]ReportRecord, error) {
	if r.pool == nil {
		return []ReportRecord{}, nil
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, reporter_user_id, target_user_id, reason, details, status, action, created_at
FROM reports
WHERE status = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	items := make([]ReportRecord, 0, limit)
	for rows.Next() {
		var rec ReportRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ReporterUserID,
			&rec.TargetUserID,
			&rec.Reason,
			&rec.Details,
			&rec.Status,
			&rec.Action,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reports: %w", rows.Err())
	}

	return items, nil
}

// MarkResolved closes an OPEN report with the action taken. It reports false
// when the row exists but is not OPEN anymore.
func (r *ReportRepo) MarkResolved(ctx context.Context, tx pgx.Tx, reportID int64, action enums.ReportAction) (bool, error) {
	if reportID <= 0 {
		return false, fmt.Errorf("invalid report id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE reports
SET status = 'RESOLVED', action = $2, updated_at = NOW()
WHERE id = $1 AND status = 'OPEN'
`, reportID, action)
	if err != nil {
		return false, fmt.Errorf("resolve report: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
