// Package engine implements the promotional reward resolution core: the
// spin-wheel path (slab resolution plus a weighted draw over the slab's
// rewards) and the scratch-card path (independent trigger evaluation).
// Everything here is a pure computation except the spin-limit reservation,
// which goes through an injected tracker.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freshdrop/rewards/internal/domain"
)

// Rejection reason constants.
const (
	RejectCampaignExpired   = "campaign_expired"
	RejectNotEligible       = "not_eligible"
	RejectSpinLimitExceeded = "spin_limit_exceeded"
)

// Rejection is the expected, user-presentable refusal of a spin. It is an
// error value so callers can thread it through the usual return path, but it
// is a business outcome, not a failure; use AsRejection to discriminate.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("spin rejected (%s): %s", r.Reason, r.Message)
}

// AsRejection unwraps a rejection from an error returned by Spin. The second
// return is false for infrastructure or caller-contract errors.
func AsRejection(err error) (*Rejection, bool) {
	r, ok := err.(*Rejection)
	return r, ok
}

// LimitTracker reserves one spin for a (campaign, user) pair. TryReserve
// must behave as an atomic check-and-increment: under concurrent calls for
// the same pair, at most limit reservations succeed.
type LimitTracker interface {
	TryReserve(ctx context.Context, campaignID, userID string, limit int) (bool, error)
}

// ObserverFunc is notified of every produced outcome. The engine never
// persists or transmits anything itself; observers are the analytics
// side-channel.
type ObserverFunc func(ctx context.Context, outcome *domain.SpinOutcome)

// Engine is the reward resolution façade for validated campaigns.
type Engine struct {
	rng      Rand
	limits   LimitTracker
	observer ObserverFunc
	nowFunc  func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithObserver registers an outcome observer.
func WithObserver(fn ObserverFunc) EngineOption {
	return func(e *Engine) { e.observer = fn }
}

// WithClock overrides the engine clock, used in tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.nowFunc = now }
}

// New creates an Engine drawing from rng and reserving spins on limits.
func New(rng Rand, limits LimitTracker, opts ...EngineOption) *Engine {
	e := &Engine{
		rng:     rng,
		limits:  limits,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spin resolves one spin-wheel draw for a user against a validated, active
// campaign. The rejection ladder runs in order: expiry, eligibility, spin
// limit. Rejections are final for this call; the engine never retries.
func (e *Engine) Spin(ctx context.Context, c *domain.Campaign, userID, segment string, orderAmount int64) (*domain.SpinOutcome, error) {
	now := e.nowFunc().UTC()

	if !c.IsActive() || c.Expired(now) {
		spinsTotal.WithLabelValues(c.ID, RejectCampaignExpired).Inc()
		return nil, &Rejection{
			Reason:  RejectCampaignExpired,
			Message: "campaign is not active or has expired",
		}
	}

	if !c.EligibleFor(segment) {
		spinsTotal.WithLabelValues(c.ID, RejectNotEligible).Inc()
		return nil, &Rejection{
			Reason:  RejectNotEligible,
			Message: fmt.Sprintf("segment %q is not eligible for this campaign", segment),
		}
	}

	ok, err := e.limits.TryReserve(ctx, c.ID, userID, c.SpinLimitPerUser)
	if err != nil {
		return nil, fmt.Errorf("reserve spin: %w", err)
	}
	if !ok {
		spinsTotal.WithLabelValues(c.ID, RejectSpinLimitExceeded).Inc()
		return nil, &Rejection{
			Reason:  RejectSpinLimitExceeded,
			Message: fmt.Sprintf("spin limit of %d reached for this campaign", c.SpinLimitPerUser),
		}
	}

	slab, err := ResolveSlab(c, orderAmount)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(slab.Rewards))
	for _, r := range slab.Rewards {
		options = append(options, Option{ID: r.ID, Weight: r.Frequency})
	}

	winnerID, err := Draw(e.rng, options)
	if err != nil {
		return nil, fmt.Errorf("draw reward: %w", err)
	}

	var reward *domain.Reward
	for i := range slab.Rewards {
		if slab.Rewards[i].ID == winnerID {
			reward = &slab.Rewards[i]
			break
		}
	}

	outcome := &domain.SpinOutcome{
		ID:            uuid.New().String(),
		CampaignID:    c.ID,
		UserID:        userID,
		RewardID:      reward.ID,
		RewardType:    reward.Type,
		CouponCode:    reward.CouponCode,
		ResolvedValue: resolveValue(e.rng, reward),
		CreatedAt:     now,
	}

	spinsTotal.WithLabelValues(c.ID, "won").Inc()

	if e.observer != nil {
		e.observer(ctx, outcome)
	}

	return outcome, nil
}

// resolveValue produces the monetary value of a winning reward. Range-valued
// rewards are sampled uniformly; fixed-value rewards carry their configured
// value; try_again and free_shipping have none.
func resolveValue(rng Rand, r *domain.Reward) *int64 {
	if r.AmountRange != nil {
		v := SampleRange(rng, r.AmountRange.Min, r.AmountRange.Max)
		return &v
	}
	if r.RewardValue != nil {
		v := *r.RewardValue
		return &v
	}
	return nil
}

// Scratch evaluates a scratch-card trigger over the candidate catalog and,
// when a reward wins, builds the revealed outcome. A (nil, nil) return means
// no reward was won.
func (e *Engine) Scratch(ctx context.Context, userID string, ev domain.TriggerEvent, candidates []domain.ScratchReward) (*domain.ScratchOutcome, error) {
	winner, err := EvaluateTrigger(e.rng, ev, candidates)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		scratchEvaluationsTotal.WithLabelValues(ev.Kind, "no_reward").Inc()
		return nil, nil
	}

	scratchEvaluationsTotal.WithLabelValues(ev.Kind, "won").Inc()

	return &domain.ScratchOutcome{
		ID:          uuid.New().String(),
		RewardID:    winner.ID,
		RewardType:  winner.Type,
		RewardName:  winner.Name,
		UserID:      userID,
		RewardValue: winner.RewardValue,
		TriggerKind: ev.Kind,
		CreatedAt:   e.nowFunc().UTC(),
	}, nil
}
