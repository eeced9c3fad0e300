package domain

import (
	"time"
)

// Scratch reward type constants. Each type is activated by exactly one
// trigger category.
const (
	ScratchTypePrimary  = "primary"
	ScratchTypeReferral = "referral"
	ScratchTypeBonus    = "bonus"
	ScratchTypeSeasonal = "seasonal"
	ScratchTypeDaily    = "daily"
)

// Trigger kind constants. The kind selects which scratch reward types are
// candidates for an evaluation.
const (
	TriggerOrderPlaced       = "order_placed"
	TriggerReferralCompleted = "referral_completed"
	TriggerNthOrderReached   = "nth_order_reached"
	TriggerCalendarDate      = "calendar_date"
	TriggerIntervalElapsed   = "interval_elapsed"
)

// ScratchReward is a scratch-card reward option. Unlike slab rewards,
// probabilities are evaluated independently per reward and do not need to
// sum to 100 across a trigger class.
type ScratchReward struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RewardValue int64  `json:"reward_value"`
	Probability int    `json:"probability"`
	IsActive    bool   `json:"is_active"`

	// Type-specific fields.
	OrderValueThreshold *int64     `json:"order_value_threshold,omitempty"` // primary
	NthOrder            *int       `json:"nth_order,omitempty"`             // bonus
	FestivalName        string     `json:"festival_name,omitempty"`         // seasonal
	DateFrom            *time.Time `json:"date_from,omitempty"`             // seasonal, inclusive
	DateTo              *time.Time `json:"date_to,omitempty"`               // seasonal, inclusive
	IntervalHours       *int       `json:"interval_hours,omitempty"`        // daily

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TriggerEvent is a tagged variant describing the business event that may
// activate a scratch reward check. Only the field matching Kind is read.
type TriggerEvent struct {
	Kind           string    `json:"kind"`
	OrderAmount    int64     `json:"order_amount,omitempty"`
	NthOrder       int       `json:"nth_order,omitempty"`
	Date           time.Time `json:"date,omitempty"`
	HoursSinceLast int       `json:"hours_since_last,omitempty"`
}

// OrderPlaced builds a trigger for an order of the given amount.
func OrderPlaced(amount int64) TriggerEvent {
	return TriggerEvent{Kind: TriggerOrderPlaced, OrderAmount: amount}
}

// ReferralCompleted builds a trigger for a completed referral.
func ReferralCompleted() TriggerEvent {
	return TriggerEvent{Kind: TriggerReferralCompleted}
}

// NthOrderReached builds a trigger for a user's nth completed order.
func NthOrderReached(n int) TriggerEvent {
	return TriggerEvent{Kind: TriggerNthOrderReached, NthOrder: n}
}

// CalendarDate builds a trigger for a calendar date (festival windows).
func CalendarDate(date time.Time) TriggerEvent {
	return TriggerEvent{Kind: TriggerCalendarDate, Date: date}
}

// IntervalElapsed builds a trigger for hours elapsed since the user's last
// scratch of a daily reward.
func IntervalElapsed(hours int) TriggerEvent {
	return TriggerEvent{Kind: TriggerIntervalElapsed, HoursSinceLast: hours}
}

// scratchTypeForTrigger maps a trigger kind to the scratch reward type it
// can activate.
var scratchTypeForTrigger = map[string]string{
	TriggerOrderPlaced:       ScratchTypePrimary,
	TriggerReferralCompleted: ScratchTypeReferral,
	TriggerNthOrderReached:   ScratchTypeBonus,
	TriggerCalendarDate:      ScratchTypeSeasonal,
	TriggerIntervalElapsed:   ScratchTypeDaily,
}

// Matches reports whether this reward is a candidate for the given trigger:
// the reward type must correspond to the trigger kind and the type-specific
// condition must hold. Probability is not consulted here.
func (r *ScratchReward) Matches(ev TriggerEvent) bool {
	if scratchTypeForTrigger[ev.Kind] != r.Type {
		return false
	}

	switch r.Type {
	case ScratchTypePrimary:
		return r.OrderValueThreshold != nil && *r.OrderValueThreshold <= ev.OrderAmount
	case ScratchTypeReferral:
		return true
	case ScratchTypeBonus:
		return r.NthOrder != nil && *r.NthOrder == ev.NthOrder
	case ScratchTypeSeasonal:
		if r.DateFrom == nil || r.DateTo == nil {
			return false
		}
		// Both boundaries are inclusive: compare whole days.
		day := ev.Date.Truncate(24 * time.Hour)
		from := r.DateFrom.Truncate(24 * time.Hour)
		to := r.DateTo.Truncate(24 * time.Hour)
		return !day.Before(from) && !day.After(to)
	case ScratchTypeDaily:
		return r.IntervalHours != nil && *r.IntervalHours <= ev.HoursSinceLast
	default:
		return false
	}
}

// ValidScratchTypes returns the set of valid scratch reward types.
func ValidScratchTypes() []string {
	return []string{
		ScratchTypePrimary,
		ScratchTypeReferral,
		ScratchTypeBonus,
		ScratchTypeSeasonal,
		ScratchTypeDaily,
	}
}

// IsValidScratchType checks whether the given string is a valid scratch
// reward type.
func IsValidScratchType(t string) bool {
	for _, v := range ValidScratchTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// ValidTriggerKinds returns the set of valid trigger kinds.
func ValidTriggerKinds() []string {
	return []string{
		TriggerOrderPlaced,
		TriggerReferralCompleted,
		TriggerNthOrderReached,
		TriggerCalendarDate,
		TriggerIntervalElapsed,
	}
}

// IsValidTriggerKind checks whether the given string is a valid trigger kind.
func IsValidTriggerKind(k string) bool {
	for _, v := range ValidTriggerKinds() {
		if v == k {
			return true
		}
	}
	return false
}
