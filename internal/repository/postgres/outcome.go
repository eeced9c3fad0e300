package postgres

import (
	"context"
	"fmt"

	"github.com/freshdrop/rewards/internal/domain"
	"github.com/freshdrop/rewards/pkg/database"
)

// OutcomeRepository implements repository.OutcomeRepository using PostgreSQL.
type OutcomeRepository struct {
	pool database.DBTX
}

// NewOutcomeRepository creates a new PostgreSQL-backed outcome repository.
func NewOutcomeRepository(pool database.DBTX) *OutcomeRepository {
	return &OutcomeRepository{pool: pool}
}

// RecordSpin stores a spin-wheel outcome.
func (r *OutcomeRepository) RecordSpin(ctx context.Context, o *domain.SpinOutcome) (err error) {
	query := `
		INSERT INTO spin_outcomes (
			id, campaign_id, user_id, reward_id, reward_type,
			resolved_value, coupon_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "RecordSpin", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		o.ID,
		o.CampaignID,
		o.UserID,
		o.RewardID,
		o.RewardType,
		o.ResolvedValue,
		o.CouponCode,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert spin outcome: %w", err)
	}

	return nil
}

// RecordScratch stores a revealed scratch-card win.
func (r *OutcomeRepository) RecordScratch(ctx context.Context, o *domain.ScratchOutcome) (err error) {
	query := `
		INSERT INTO scratch_outcomes (
			id, reward_id, reward_type, reward_name, user_id,
			reward_value, trigger_kind, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "RecordScratch", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		o.ID,
		o.RewardID,
		o.RewardType,
		o.RewardName,
		o.UserID,
		o.RewardValue,
		o.TriggerKind,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scratch outcome: %w", err)
	}

	return nil
}

// ListSpinsByUser returns a user's most recent spin outcomes.
func (r *OutcomeRepository) ListSpinsByUser(ctx context.Context, userID string, limit int) ([]domain.SpinOutcome, error) {
	query := `
		SELECT id, campaign_id, user_id, reward_id, reward_type,
			   resolved_value, coupon_code, created_at
		FROM spin_outcomes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select spin outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []domain.SpinOutcome{}
	for rows.Next() {
		var o domain.SpinOutcome
		if err := rows.Scan(
			&o.ID,
			&o.CampaignID,
			&o.UserID,
			&o.RewardID,
			&o.RewardType,
			&o.ResolvedValue,
			&o.CouponCode,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan spin outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spin outcomes: %w", err)
	}

	return outcomes, nil
}
