package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freshdrop/rewards/internal/domain"
	"github.com/freshdrop/rewards/internal/engine"
	"github.com/freshdrop/rewards/internal/event"
	"github.com/freshdrop/rewards/internal/repository"
	"github.com/freshdrop/rewards/internal/spinlimit"
	apperrors "github.com/freshdrop/rewards/pkg/errors"
	"github.com/freshdrop/rewards/pkg/slug"
)

// Pagination bounds for campaign listing.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// RewardService implements the business logic for reward campaigns, scratch
// rewards, and reward resolution.
type RewardService struct {
	campaigns repository.CampaignRepository
	scratch   repository.ScratchRewardRepository
	outcomes  repository.OutcomeRepository
	engine    *engine.Engine
	limits    spinlimit.Tracker
	producer  *event.Producer
	logger    *slog.Logger
}

// NewRewardService creates a new reward service.
func NewRewardService(
	campaigns repository.CampaignRepository,
	scratch repository.ScratchRewardRepository,
	outcomes repository.OutcomeRepository,
	eng *engine.Engine,
	limits spinlimit.Tracker,
	producer *event.Producer,
	logger *slog.Logger,
) *RewardService {
	return &RewardService{
		campaigns: campaigns,
		scratch:   scratch,
		outcomes:  outcomes,
		engine:    eng,
		limits:    limits,
		producer:  producer,
		logger:    logger,
	}
}

// CreateCampaignInput holds the parameters for creating a spin campaign.
type CreateCampaignInput struct {
	Name             string
	Description      string
	ExpiryDate       time.Time
	SpinLimitPerUser int
	Eligibility      []string
	Slabs            []domain.Slab
}

// UpdateCampaignInput holds the parameters for updating a draft campaign.
type UpdateCampaignInput struct {
	Name             *string
	Description      *string
	ExpiryDate       *time.Time
	SpinLimitPerUser *int
	Eligibility      []string
	Slabs            []domain.Slab
}

// CreateCampaign creates a new campaign in draft status. The slab catalog is
// stored as given; structural validation runs on activation, so admins can
// save work-in-progress drafts.
func (s *RewardService) CreateCampaign(ctx context.Context, input *CreateCampaignInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("campaign name is required")
	}
	if input.SpinLimitPerUser <= 0 {
		return nil, apperrors.InvalidInput("spin limit per user must be positive")
	}
	for _, seg := range input.Eligibility {
		if !domain.IsValidSegment(seg) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid eligibility segment %q, must be one of: %s", seg, strings.Join(domain.ValidSegments(), ", ")))
		}
	}
	for _, slab := range input.Slabs {
		for _, r := range slab.Rewards {
			if !domain.IsValidRewardType(r.Type) {
				return nil, apperrors.InvalidInput(fmt.Sprintf("invalid reward type %q, must be one of: %s", r.Type, strings.Join(domain.ValidRewardTypes(), ", ")))
			}
		}
	}

	eligibility := input.Eligibility
	if len(eligibility) == 0 {
		eligibility = []string{domain.SegmentAll}
	}

	now := time.Now().UTC()
	campaign := &domain.Campaign{
		ID:               uuid.New().String(),
		Name:             input.Name,
		Slug:             slug.Generate(input.Name),
		Description:      input.Description,
		Status:           domain.CampaignStatusDraft,
		ExpiryDate:       input.ExpiryDate,
		SpinLimitPerUser: input.SpinLimitPerUser,
		Eligibility:      eligibility,
		Slabs:            input.Slabs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if campaign.Slabs == nil {
		campaign.Slabs = []domain.Slab{}
	}
	assignRewardIDs(campaign.Slabs)

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	s.logger.InfoContext(ctx, "campaign created",
		slog.String("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
	)

	return campaign, nil
}

// GetCampaign retrieves a campaign by its ID.
func (s *RewardService) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// ListCampaigns returns campaigns matching the filter with the total count.
func (s *RewardService) ListCampaigns(ctx context.Context, filter repository.CampaignFilter) ([]domain.Campaign, int, error) {
	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", *filter.Status, strings.Join(domain.ValidStatuses(), ", ")))
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	campaigns, total, err := s.campaigns.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, total, nil
}

// UpdateCampaign modifies a draft campaign. Campaigns that have left draft
// status are immutable; use DuplicateCampaign to iterate on a new draft.
func (s *RewardService) UpdateCampaign(ctx context.Context, id string, input *UpdateCampaignInput) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	if campaign.Status != domain.CampaignStatusDraft {
		return nil, apperrors.Conflict(fmt.Sprintf("campaign %s is %s; only draft campaigns can be edited, duplicate it to make changes", id, campaign.Status))
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("campaign name is required")
		}
		campaign.Name = *input.Name
		campaign.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		campaign.Description = *input.Description
	}
	if input.ExpiryDate != nil {
		campaign.ExpiryDate = *input.ExpiryDate
	}
	if input.SpinLimitPerUser != nil {
		if *input.SpinLimitPerUser <= 0 {
			return nil, apperrors.InvalidInput("spin limit per user must be positive")
		}
		campaign.SpinLimitPerUser = *input.SpinLimitPerUser
	}
	if input.Eligibility != nil {
		for _, seg := range input.Eligibility {
			if !domain.IsValidSegment(seg) {
				return nil, apperrors.InvalidInput(fmt.Sprintf("invalid eligibility segment %q, must be one of: %s", seg, strings.Join(domain.ValidSegments(), ", ")))
			}
		}
		campaign.Eligibility = input.Eligibility
	}
	if input.Slabs != nil {
		for _, slab := range input.Slabs {
			for _, r := range slab.Rewards {
				if !domain.IsValidRewardType(r.Type) {
					return nil, apperrors.InvalidInput(fmt.Sprintf("invalid reward type %q, must be one of: %s", r.Type, strings.Join(domain.ValidRewardTypes(), ", ")))
				}
			}
		}
		campaign.Slabs = input.Slabs
		assignRewardIDs(campaign.Slabs)
	}

	campaign.UpdatedAt = time.Now().UTC()

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}

	s.logger.InfoContext(ctx, "campaign updated", slog.String("campaign_id", campaign.ID))

	return campaign, nil
}

// DuplicateCampaign copies a campaign into a fresh draft. This is the only
// way to change the catalog of a campaign that has been activated.
func (s *RewardService) DuplicateCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	src, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	now := time.Now().UTC()
	dup := &domain.Campaign{
		ID:               uuid.New().String(),
		Name:             src.Name + " (copy)",
		Slug:             slug.Generate(src.Name + " (copy)"),
		Description:      src.Description,
		Status:           domain.CampaignStatusDraft,
		ExpiryDate:       src.ExpiryDate,
		SpinLimitPerUser: src.SpinLimitPerUser,
		Eligibility:      append([]string(nil), src.Eligibility...),
		Slabs:            copySlabs(src.Slabs),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	assignRewardIDs(dup.Slabs)

	if err := s.campaigns.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("create campaign copy: %w", err)
	}

	s.logger.InfoContext(ctx, "campaign duplicated",
		slog.String("source_id", src.ID),
		slog.String("campaign_id", dup.ID),
	)

	return dup, nil
}

// ActivateCampaign validates the slab catalog and, if it holds, transitions
// the campaign to active. All catalog violations are reported together so
// the admin can fix the whole configuration in one pass.
func (s *RewardService) ActivateCampaign(ctx context.Context, id string) (*domain.Campaign, []domain.CatalogError, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get campaign: %w", err)
	}

	if campaign.Status == domain.CampaignStatusActive {
		return campaign, nil, nil
	}
	if campaign.Status != domain.CampaignStatusDraft && campaign.Status != domain.CampaignStatusPaused {
		return nil, nil, apperrors.Conflict(fmt.Sprintf("campaign %s is %s and cannot be activated", id, campaign.Status))
	}
	if campaign.Expired(time.Now().UTC()) {
		return nil, nil, apperrors.Conflict(fmt.Sprintf("campaign %s has expired and cannot be activated", id))
	}

	if violations := domain.ValidateCampaign(campaign); len(violations) > 0 {
		return nil, violations, nil
	}

	campaign.Status = domain.CampaignStatusActive
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, nil, fmt.Errorf("activate campaign: %w", err)
	}

	if err := s.producer.PublishCampaignActivated(ctx, campaign); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish campaign_activated event",
			slog.String("campaign_id", campaign.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "campaign activated",
		slog.String("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
	)

	return campaign, nil, nil
}

// DeactivateCampaign pauses an active campaign. Spin history is retained, so
// reactivating does not reset per-user limits.
func (s *RewardService) DeactivateCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	if campaign.Status != domain.CampaignStatusActive {
		return nil, apperrors.Conflict(fmt.Sprintf("campaign %s is %s, only active campaigns can be paused", id, campaign.Status))
	}

	campaign.Status = domain.CampaignStatusPaused
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("deactivate campaign: %w", err)
	}

	s.logger.InfoContext(ctx, "campaign deactivated", slog.String("campaign_id", campaign.ID))

	return campaign, nil
}

// DeleteCampaign removes a campaign and clears its per-user spin counters.
func (s *RewardService) DeleteCampaign(ctx context.Context, id string) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}

	if err := s.limits.ResetCampaign(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to reset spin counters for deleted campaign",
			slog.String("campaign_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "campaign deleted", slog.String("campaign_id", id))

	return nil
}

// CreateScratchRewardInput holds the parameters for creating a scratch reward.
type CreateScratchRewardInput struct {
	Type        string
	Name        string
	Description string
	RewardValue int64
	Probability int
	IsActive    bool

	OrderValueThreshold *int64
	NthOrder            *int
	FestivalName        string
	DateFrom            *time.Time
	DateTo              *time.Time
	IntervalHours       *int
}

// CreateScratchReward creates a scratch-card reward. Unlike campaigns there
// is no draft stage, so the reward is validated on creation.
func (s *RewardService) CreateScratchReward(ctx context.Context, input *CreateScratchRewardInput) (*domain.ScratchReward, []domain.CatalogError, error) {
	if !domain.IsValidScratchType(input.Type) {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("invalid scratch reward type %q, must be one of: %s", input.Type, strings.Join(domain.ValidScratchTypes(), ", ")))
	}

	now := time.Now().UTC()
	reward := &domain.ScratchReward{
		ID:                  uuid.New().String(),
		Type:                input.Type,
		Name:                input.Name,
		Description:         input.Description,
		RewardValue:         input.RewardValue,
		Probability:         input.Probability,
		IsActive:            input.IsActive,
		OrderValueThreshold: input.OrderValueThreshold,
		NthOrder:            input.NthOrder,
		FestivalName:        input.FestivalName,
		DateFrom:            input.DateFrom,
		DateTo:              input.DateTo,
		IntervalHours:       input.IntervalHours,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if violations := domain.ValidateScratchRewards([]domain.ScratchReward{*reward}); len(violations) > 0 {
		return nil, violations, nil
	}

	if err := s.scratch.Create(ctx, reward); err != nil {
		return nil, nil, fmt.Errorf("create scratch reward: %w", err)
	}

	s.logger.InfoContext(ctx, "scratch reward created",
		slog.String("reward_id", reward.ID),
		slog.String("type", reward.Type),
		slog.String("name", reward.Name),
	)

	return reward, nil, nil
}

// GetScratchReward retrieves a scratch reward by its ID.
func (s *RewardService) GetScratchReward(ctx context.Context, id string) (*domain.ScratchReward, error) {
	reward, err := s.scratch.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get scratch reward: %w", err)
	}
	return reward, nil
}

// ListScratchRewards returns scratch rewards, optionally only active ones.
func (s *RewardService) ListScratchRewards(ctx context.Context, activeOnly bool) ([]domain.ScratchReward, error) {
	rewards, err := s.scratch.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list scratch rewards: %w", err)
	}
	return rewards, nil
}

// UpdateScratchRewardInput holds the parameters for updating a scratch reward.
// The reward type is fixed at creation.
type UpdateScratchRewardInput struct {
	Name        *string
	Description *string
	RewardValue *int64
	Probability *int
	IsActive    *bool

	OrderValueThreshold *int64
	NthOrder            *int
	FestivalName        *string
	DateFrom            *time.Time
	DateTo              *time.Time
	IntervalHours       *int
}

// UpdateScratchReward modifies a scratch reward. The updated reward is
// re-validated before it is stored.
func (s *RewardService) UpdateScratchReward(ctx context.Context, id string, input *UpdateScratchRewardInput) (*domain.ScratchReward, []domain.CatalogError, error) {
	reward, err := s.scratch.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get scratch reward: %w", err)
	}

	if input.Name != nil {
		reward.Name = *input.Name
	}
	if input.Description != nil {
		reward.Description = *input.Description
	}
	if input.RewardValue != nil {
		reward.RewardValue = *input.RewardValue
	}
	if input.Probability != nil {
		reward.Probability = *input.Probability
	}
	if input.IsActive != nil {
		reward.IsActive = *input.IsActive
	}
	if input.OrderValueThreshold != nil {
		reward.OrderValueThreshold = input.OrderValueThreshold
	}
	if input.NthOrder != nil {
		reward.NthOrder = input.NthOrder
	}
	if input.FestivalName != nil {
		reward.FestivalName = *input.FestivalName
	}
	if input.DateFrom != nil {
		reward.DateFrom = input.DateFrom
	}
	if input.DateTo != nil {
		reward.DateTo = input.DateTo
	}
	if input.IntervalHours != nil {
		reward.IntervalHours = input.IntervalHours
	}

	if violations := domain.ValidateScratchRewards([]domain.ScratchReward{*reward}); len(violations) > 0 {
		return nil, violations, nil
	}

	reward.UpdatedAt = time.Now().UTC()

	if err := s.scratch.Update(ctx, reward); err != nil {
		return nil, nil, fmt.Errorf("update scratch reward: %w", err)
	}

	s.logger.InfoContext(ctx, "scratch reward updated", slog.String("reward_id", reward.ID))

	return reward, nil, nil
}

// SpinInput holds the parameters for resolving one spin.
type SpinInput struct {
	CampaignID  string
	UserID      string
	Segment     string
	OrderAmount int64
}

// Spin resolves one spin-wheel draw. A rejection is returned as an
// *engine.Rejection error; callers should discriminate it from
// infrastructure failures with engine.AsRejection.
func (s *RewardService) Spin(ctx context.Context, input *SpinInput) (*domain.SpinOutcome, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.Segment != "" && !domain.IsValidSegment(input.Segment) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid segment %q, must be one of: %s", input.Segment, strings.Join(domain.ValidSegments(), ", ")))
	}
	if input.OrderAmount < 0 {
		return nil, apperrors.InvalidInput("order amount must not be negative")
	}

	campaign, err := s.campaigns.GetByID(ctx, input.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	outcome, err := s.engine.Spin(ctx, campaign, input.UserID, input.Segment, input.OrderAmount)
	if err != nil {
		return nil, err
	}

	if err := s.outcomes.RecordSpin(ctx, outcome); err != nil {
		return nil, fmt.Errorf("record spin outcome: %w", err)
	}

	if err := s.producer.PublishSpinCompleted(ctx, outcome); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish spin.completed event",
			slog.String("outcome_id", outcome.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "spin resolved",
		slog.String("campaign_id", outcome.CampaignID),
		slog.String("user_id", outcome.UserID),
		slog.String("reward_type", outcome.RewardType),
	)

	return outcome, nil
}

// Scratch evaluates a scratch-card trigger against the active reward catalog.
// A nil outcome with a nil error means no reward was won; nothing is
// persisted in that case.
func (s *RewardService) Scratch(ctx context.Context, userID string, trigger domain.TriggerEvent) (*domain.ScratchOutcome, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	candidates, err := s.scratch.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list scratch rewards: %w", err)
	}

	outcome, err := s.engine.Scratch(ctx, userID, trigger, candidates)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, nil
	}

	if err := s.outcomes.RecordScratch(ctx, outcome); err != nil {
		return nil, fmt.Errorf("record scratch outcome: %w", err)
	}

	if err := s.producer.PublishScratchRevealed(ctx, outcome); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish scratch.revealed event",
			slog.String("outcome_id", outcome.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "scratch reward revealed",
		slog.String("user_id", outcome.UserID),
		slog.String("reward_id", outcome.RewardID),
		slog.String("trigger", outcome.TriggerKind),
	)

	return outcome, nil
}

// SpinHistory returns a user's most recent spin outcomes.
func (s *RewardService) SpinHistory(ctx context.Context, userID string, limit int) ([]domain.SpinOutcome, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if limit < 1 || limit > maxPerPage {
		limit = defaultPerPage
	}

	outcomes, err := s.outcomes.ListSpinsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list spin history: %w", err)
	}
	return outcomes, nil
}

// SpinsUsed returns how many spins a user has consumed for a campaign.
func (s *RewardService) SpinsUsed(ctx context.Context, campaignID, userID string) (int, error) {
	used, err := s.limits.Used(ctx, campaignID, userID)
	if err != nil {
		return 0, fmt.Errorf("get spins used: %w", err)
	}
	return used, nil
}

// assignRewardIDs generates identifiers for rewards that do not carry one,
// so the resolver and outcome records can reference individual wheel options.
func assignRewardIDs(slabs []domain.Slab) {
	for i := range slabs {
		for j := range slabs[i].Rewards {
			if slabs[i].Rewards[j].ID == "" {
				slabs[i].Rewards[j].ID = uuid.New().String()
			}
		}
	}
}

func copySlabs(slabs []domain.Slab) []domain.Slab {
	out := make([]domain.Slab, len(slabs))
	for i, s := range slabs {
		out[i] = s
		out[i].Rewards = append([]domain.Reward(nil), s.Rewards...)
		if s.MaxAmount != nil {
			v := *s.MaxAmount
			out[i].MaxAmount = &v
		}
	}
	return out
}
