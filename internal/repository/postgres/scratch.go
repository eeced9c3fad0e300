package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/freshdrop/rewards/internal/domain"
	"github.com/freshdrop/rewards/pkg/database"
	apperrors "github.com/freshdrop/rewards/pkg/errors"
)

// ScratchRewardRepository implements repository.ScratchRewardRepository
// using PostgreSQL.
type ScratchRewardRepository struct {
	pool database.DBTX
}

// NewScratchRewardRepository creates a new PostgreSQL-backed scratch reward repository.
func NewScratchRewardRepository(pool database.DBTX) *ScratchRewardRepository {
	return &ScratchRewardRepository{pool: pool}
}

const scratchColumns = `id, type, name, description, reward_value, probability,
		is_active, order_value_threshold, nth_order, festival_name,
		date_from, date_to, interval_hours, created_at, updated_at`

// Create inserts a new scratch reward.
func (r *ScratchRewardRepository) Create(ctx context.Context, s *domain.ScratchReward) error {
	query := `
		INSERT INTO scratch_rewards (` + scratchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Type,
		s.Name,
		s.Description,
		s.RewardValue,
		s.Probability,
		s.IsActive,
		s.OrderValueThreshold,
		s.NthOrder,
		s.FestivalName,
		s.DateFrom,
		s.DateTo,
		s.IntervalHours,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("scratch reward", "id", s.ID)
		}
		return fmt.Errorf("insert scratch reward: %w", err)
	}

	return nil
}

// GetByID retrieves a scratch reward by its ID.
func (r *ScratchRewardRepository) GetByID(ctx context.Context, id string) (*domain.ScratchReward, error) {
	query := `SELECT ` + scratchColumns + ` FROM scratch_rewards WHERE id = $1`

	s, err := scanScratchReward(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("scratch reward", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select scratch reward: %w", err)
	}
	return s, nil
}

// List returns all scratch rewards, optionally restricted to active ones.
func (r *ScratchRewardRepository) List(ctx context.Context, activeOnly bool) ([]domain.ScratchReward, error) {
	query := `SELECT ` + scratchColumns + ` FROM scratch_rewards`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select scratch rewards: %w", err)
	}
	defer rows.Close()

	rewards := []domain.ScratchReward{}
	for rows.Next() {
		s, err := scanScratchReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scratch reward: %w", err)
		}
		rewards = append(rewards, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scratch rewards: %w", err)
	}

	return rewards, nil
}

// Update modifies an existing scratch reward.
func (r *ScratchRewardRepository) Update(ctx context.Context, s *domain.ScratchReward) error {
	query := `
		UPDATE scratch_rewards
		SET type = $2, name = $3, description = $4, reward_value = $5,
			probability = $6, is_active = $7, order_value_threshold = $8,
			nth_order = $9, festival_name = $10, date_from = $11, date_to = $12,
			interval_hours = $13, updated_at = $14
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Type,
		s.Name,
		s.Description,
		s.RewardValue,
		s.Probability,
		s.IsActive,
		s.OrderValueThreshold,
		s.NthOrder,
		s.FestivalName,
		s.DateFrom,
		s.DateTo,
		s.IntervalHours,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update scratch reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("scratch reward", s.ID)
	}

	return nil
}

func scanScratchReward(row pgx.Row) (*domain.ScratchReward, error) {
	var s domain.ScratchReward

	err := row.Scan(
		&s.ID,
		&s.Type,
		&s.Name,
		&s.Description,
		&s.RewardValue,
		&s.Probability,
		&s.IsActive,
		&s.OrderValueThreshold,
		&s.NthOrder,
		&s.FestivalName,
		&s.DateFrom,
		&s.DateTo,
		&s.IntervalHours,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}
