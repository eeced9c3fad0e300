package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freshdrop/rewards/internal/domain"
	pkgkafka "github.com/freshdrop/rewards/pkg/kafka"
)

// Kafka topic constants for reward domain events.
const (
	TopicCampaignActivated = "freshdrop.rewards.campaign_activated"
	TopicSpinCompleted     = "freshdrop.rewards.spin.completed"
	TopicScratchRevealed   = "freshdrop.rewards.scratch.revealed"
)

// Aggregate type constants.
const (
	AggregateTypeCampaign = "spin_campaign"
	AggregateTypeScratch  = "scratch_reward"
)

// Source identifier for events originating from the rewards service.
const SourceRewardsService = "rewards-service"

// CampaignActivatedData is the payload for a campaign_activated event.
type CampaignActivatedData struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	ExpiryDate       string `json:"expiry_date"`
	SpinLimitPerUser int    `json:"spin_limit_per_user"`
	SlabCount        int    `json:"slab_count"`
}

// SpinCompletedData is the payload for a spin.completed event.
type SpinCompletedData struct {
	OutcomeID     string `json:"outcome_id"`
	CampaignID    string `json:"campaign_id"`
	UserID        string `json:"user_id"`
	RewardID      string `json:"reward_id"`
	RewardType    string `json:"reward_type"`
	ResolvedValue *int64 `json:"resolved_value,omitempty"`
	CouponCode    string `json:"coupon_code,omitempty"`
}

// ScratchRevealedData is the payload for a scratch.revealed event.
type ScratchRevealedData struct {
	OutcomeID   string `json:"outcome_id"`
	RewardID    string `json:"reward_id"`
	RewardType  string `json:"reward_type"`
	RewardName  string `json:"reward_name"`
	UserID      string `json:"user_id"`
	RewardValue int64  `json:"reward_value"`
	TriggerKind string `json:"trigger_kind"`
}

// Producer publishes reward domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the rewards service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCampaignActivated publishes a campaign_activated event.
func (p *Producer) PublishCampaignActivated(ctx context.Context, campaign *domain.Campaign) error {
	data := CampaignActivatedData{
		ID:               campaign.ID,
		Name:             campaign.Name,
		Status:           campaign.Status,
		ExpiryDate:       campaign.ExpiryDate.Format("2006-01-02"),
		SpinLimitPerUser: campaign.SpinLimitPerUser,
		SlabCount:        len(campaign.Slabs),
	}

	event, err := pkgkafka.NewEvent(TopicCampaignActivated, campaign.ID, AggregateTypeCampaign, SourceRewardsService, data)
	if err != nil {
		return fmt.Errorf("create campaign_activated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCampaignActivated, event); err != nil {
		return fmt.Errorf("publish campaign_activated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published campaign_activated event",
		slog.String("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
	)

	return nil
}

// PublishSpinCompleted publishes a spin.completed event.
func (p *Producer) PublishSpinCompleted(ctx context.Context, outcome *domain.SpinOutcome) error {
	data := SpinCompletedData{
		OutcomeID:     outcome.ID,
		CampaignID:    outcome.CampaignID,
		UserID:        outcome.UserID,
		RewardID:      outcome.RewardID,
		RewardType:    outcome.RewardType,
		ResolvedValue: outcome.ResolvedValue,
		CouponCode:    outcome.CouponCode,
	}

	event, err := pkgkafka.NewEvent(TopicSpinCompleted, outcome.CampaignID, AggregateTypeCampaign, SourceRewardsService, data)
	if err != nil {
		return fmt.Errorf("create spin.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSpinCompleted, event); err != nil {
		return fmt.Errorf("publish spin.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published spin.completed event",
		slog.String("campaign_id", outcome.CampaignID),
		slog.String("user_id", outcome.UserID),
		slog.String("reward_type", outcome.RewardType),
	)

	return nil
}

// PublishScratchRevealed publishes a scratch.revealed event.
func (p *Producer) PublishScratchRevealed(ctx context.Context, outcome *domain.ScratchOutcome) error {
	data := ScratchRevealedData{
		OutcomeID:   outcome.ID,
		RewardID:    outcome.RewardID,
		RewardType:  outcome.RewardType,
		RewardName:  outcome.RewardName,
		UserID:      outcome.UserID,
		RewardValue: outcome.RewardValue,
		TriggerKind: outcome.TriggerKind,
	}

	event, err := pkgkafka.NewEvent(TopicScratchRevealed, outcome.RewardID, AggregateTypeScratch, SourceRewardsService, data)
	if err != nil {
		return fmt.Errorf("create scratch.revealed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicScratchRevealed, event); err != nil {
		return fmt.Errorf("publish scratch.revealed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published scratch.revealed event",
		slog.String("reward_id", outcome.RewardID),
		slog.String("user_id", outcome.UserID),
		slog.String("trigger", outcome.TriggerKind),
	)

	return nil
}
