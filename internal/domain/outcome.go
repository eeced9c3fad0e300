package domain

import (
	"time"
)

// SpinOutcome records the result of one spin-wheel draw. ResolvedValue is
// set when the winning reward carried an amount range (sampled at draw time)
// or a fixed reward value; it is nil for try_again and free_shipping.
type SpinOutcome struct {
	ID            string    `json:"id"`
	CampaignID    string    `json:"campaign_id"`
	UserID        string    `json:"user_id"`
	RewardID      string    `json:"reward_id"`
	RewardType    string    `json:"reward_type"`
	ResolvedValue *int64    `json:"resolved_value,omitempty"`
	CouponCode    string    `json:"coupon_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScratchOutcome records a revealed scratch-card win. Evaluations where no
// reward wins produce no outcome at all.
type ScratchOutcome struct {
	ID          string    `json:"id"`
	RewardID    string    `json:"reward_id"`
	RewardType  string    `json:"reward_type"`
	RewardName  string    `json:"reward_name"`
	UserID      string    `json:"user_id"`
	RewardValue int64     `json:"reward_value"`
	TriggerKind string    `json:"trigger_kind"`
	CreatedAt   time.Time `json:"created_at"`
}
