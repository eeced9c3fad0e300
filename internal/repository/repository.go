package repository

import (
	"context"

	"github.com/freshdrop/rewards/internal/domain"
)

// CampaignFilter defines filter criteria for listing campaigns.
type CampaignFilter struct {
	Status  *string
	Page    int
	PerPage int
}

// CampaignRepository defines persistence for spin-wheel campaigns.
type CampaignRepository interface {
	// Create inserts a new campaign into the store.
	Create(ctx context.Context, campaign *domain.Campaign) error

	// GetByID retrieves a campaign by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns campaigns matching the given filter along with the total count.
	List(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, int, error)

	// Update modifies an existing campaign in the store.
	Update(ctx context.Context, campaign *domain.Campaign) error

	// Delete removes a campaign.
	Delete(ctx context.Context, id string) error
}

// ScratchRewardRepository defines persistence for scratch-card rewards.
type ScratchRewardRepository interface {
	// Create inserts a new scratch reward.
	Create(ctx context.Context, reward *domain.ScratchReward) error

	// GetByID retrieves a scratch reward by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.ScratchReward, error)

	// List returns all scratch rewards; activeOnly restricts to active ones.
	List(ctx context.Context, activeOnly bool) ([]domain.ScratchReward, error)

	// Update modifies an existing scratch reward.
	Update(ctx context.Context, reward *domain.ScratchReward) error
}

// OutcomeRepository records produced reward outcomes.
type OutcomeRepository interface {
	// RecordSpin stores a spin-wheel outcome.
	RecordSpin(ctx context.Context, outcome *domain.SpinOutcome) error

	// RecordScratch stores a revealed scratch-card win.
	RecordScratch(ctx context.Context, outcome *domain.ScratchOutcome) error

	// ListSpinsByUser returns a user's most recent spin outcomes.
	ListSpinsByUser(ctx context.Context, userID string, limit int) ([]domain.SpinOutcome, error)
}
