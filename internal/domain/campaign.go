package domain

import (
	"time"
)

// Campaign status constants.
const (
	CampaignStatusDraft    = "draft"
	CampaignStatusActive   = "active"
	CampaignStatusPaused   = "paused"
	CampaignStatusExpired  = "expired"
	CampaignStatusArchived = "archived"
)

// Reward type constants for spin-wheel slabs.
const (
	RewardTypeWalletCredit    = "wallet_credit"
	RewardTypeInstantDiscount = "instant_discount"
	RewardTypeFreeShipping    = "free_shipping"
	RewardTypeFixedWallet     = "fixed_wallet"
	RewardTypeProduct         = "product_reward"
	RewardTypeTryAgain        = "try_again"
)

// User segment constants used for campaign eligibility.
const (
	SegmentAll        = "all"
	SegmentNewUsers   = "new_users"
	SegmentFirstOrder = "first_order"
	SegmentReturning  = "returning"
	SegmentReferral   = "referral"
)

// AmountRange bounds a variable-value reward. The credited amount is drawn
// uniformly from [Min, Max] (inclusive) when the reward is won. Amounts are
// in minor currency units.
type AmountRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Reward is one option on a slab's wheel. Frequency is the percentage share
// of the wheel this reward occupies; the frequencies of a slab's rewards must
// sum to exactly 100. A try_again reward is a valid "no prize" option and
// still occupies its share.
type Reward struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Frequency    int          `json:"frequency"`
	Description  string       `json:"description,omitempty"`
	CouponCode   string       `json:"coupon_code,omitempty"`
	MinCartValue *int64       `json:"min_cart_value,omitempty"`
	RewardValue  *int64       `json:"reward_value,omitempty"`
	AmountRange  *AmountRange `json:"amount_range,omitempty"`
}

// Slab is an order-amount band [MinAmount, MaxAmount) with its own reward
// wheel. A nil MaxAmount means unbounded and is only legal on the last slab.
type Slab struct {
	MinAmount int64    `json:"min_amount"`
	MaxAmount *int64   `json:"max_amount,omitempty"`
	Rewards   []Reward `json:"rewards"`
}

// Contains reports whether the given order amount falls inside this slab.
func (s *Slab) Contains(amount int64) bool {
	if amount < s.MinAmount {
		return false
	}
	return s.MaxAmount == nil || amount < *s.MaxAmount
}

// Campaign is a spin-wheel reward campaign. Slabs are ordered by MinAmount
// and, once the campaign is activated, the aggregate is immutable; changes
// require duplicating it into a new draft.
type Campaign struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	Status           string    `json:"status"`
	ExpiryDate       time.Time `json:"expiry_date"`
	SpinLimitPerUser int       `json:"spin_limit_per_user"`
	Eligibility      []string  `json:"eligibility"`
	Slabs            []Slab    `json:"slabs"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsActive reports whether the campaign is in the active status.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

// Expired reports whether the campaign expiry has passed at the given instant.
func (c *Campaign) Expired(now time.Time) bool {
	return now.After(c.ExpiryDate)
}

// EligibleFor reports whether a user in the given segment may draw against
// this campaign. An eligibility set containing "all" admits every segment.
func (c *Campaign) EligibleFor(segment string) bool {
	for _, s := range c.Eligibility {
		if s == SegmentAll || s == segment {
			return true
		}
	}
	return false
}

// ValidRewardTypes returns the set of valid slab reward types.
func ValidRewardTypes() []string {
	return []string{
		RewardTypeWalletCredit,
		RewardTypeInstantDiscount,
		RewardTypeFreeShipping,
		RewardTypeFixedWallet,
		RewardTypeProduct,
		RewardTypeTryAgain,
	}
}

// IsValidRewardType checks whether the given string is a valid reward type.
func IsValidRewardType(t string) bool {
	for _, v := range ValidRewardTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// ValidSegments returns the set of valid eligibility segments.
func ValidSegments() []string {
	return []string{
		SegmentAll,
		SegmentNewUsers,
		SegmentFirstOrder,
		SegmentReturning,
		SegmentReferral,
	}
}

// IsValidSegment checks whether the given string is a valid user segment.
func IsValidSegment(s string) bool {
	for _, v := range ValidSegments() {
		if v == s {
			return true
		}
	}
	return false
}

// ValidStatuses returns the set of valid campaign statuses.
func ValidStatuses() []string {
	return []string{
		CampaignStatusDraft,
		CampaignStatusActive,
		CampaignStatusPaused,
		CampaignStatusExpired,
		CampaignStatusArchived,
	}
}

// IsValidStatus checks whether the given string is a valid campaign status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
