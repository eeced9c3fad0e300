package domain

import (
	"fmt"
)

// Catalog validation error kinds.
const (
	ErrKindSlabCoverage        = "slab_coverage"
	ErrKindProbabilityMismatch = "probability_mismatch"
	ErrKindInvalidRange        = "invalid_range"
	ErrKindMissingField        = "missing_field"
	ErrKindInvalidDateRange    = "invalid_date_range"
)

// CatalogError describes one validation failure in a reward catalog. The
// campaign editor displays Kind and Message verbatim; SlabIndex and RewardID
// locate the offending entry when applicable (SlabIndex is -1 otherwise).
type CatalogError struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	SlabIndex int    `json:"slab_index"`
	RewardID  string `json:"reward_id,omitempty"`
}

func (e CatalogError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ValidateCampaign checks a spin-wheel campaign's slab catalog before it may
// be activated. Checks run in three ordered categories, short-circuiting
// between categories but collecting every error within one:
//
//  1. slab coverage: non-empty, sorted ascending, contiguous from 0, no
//     overlaps, only the last slab unbounded (and it must be unbounded so
//     every non-negative order amount resolves to exactly one slab)
//  2. reward frequencies: each slab non-empty with frequencies in [0,100]
//     summing to exactly 100
//  3. amount ranges: 0 <= min <= max on every range-valued reward
//
// A nil return means the campaign may be activated.
func ValidateCampaign(c *Campaign) []CatalogError {
	if errs := validateSlabCoverage(c.Slabs); len(errs) > 0 {
		return errs
	}
	if errs := validateFrequencies(c.Slabs); len(errs) > 0 {
		return errs
	}
	return validateAmountRanges(c.Slabs)
}

func validateSlabCoverage(slabs []Slab) []CatalogError {
	if len(slabs) == 0 {
		return []CatalogError{{
			Kind:      ErrKindSlabCoverage,
			Message:   "campaign has no slabs",
			SlabIndex: -1,
		}}
	}

	var errs []CatalogError

	if slabs[0].MinAmount != 0 {
		errs = append(errs, CatalogError{
			Kind:      ErrKindSlabCoverage,
			Message:   fmt.Sprintf("first slab must start at 0, starts at %d", slabs[0].MinAmount),
			SlabIndex: 0,
		})
	}

	for i, s := range slabs {
		last := i == len(slabs)-1

		if s.MaxAmount == nil {
			if !last {
				errs = append(errs, CatalogError{
					Kind:      ErrKindSlabCoverage,
					Message:   fmt.Sprintf("slab %d is unbounded but is not the last slab", i),
					SlabIndex: i,
				})
			}
			continue
		}

		if *s.MaxAmount <= s.MinAmount {
			errs = append(errs, CatalogError{
				Kind:      ErrKindSlabCoverage,
				Message:   fmt.Sprintf("slab %d range [%d, %d) is empty", i, s.MinAmount, *s.MaxAmount),
				SlabIndex: i,
			})
		}

		if last {
			// Every non-negative amount must resolve to a slab, so the
			// catalog has to cover [0, inf).
			errs = append(errs, CatalogError{
				Kind:      ErrKindSlabCoverage,
				Message:   fmt.Sprintf("last slab must be unbounded, ends at %d", *s.MaxAmount),
				SlabIndex: i,
			})
			continue
		}

		if next := slabs[i+1].MinAmount; next != *s.MaxAmount {
			word := "gap"
			if next < *s.MaxAmount {
				word = "overlap"
			}
			errs = append(errs, CatalogError{
				Kind:      ErrKindSlabCoverage,
				Message:   fmt.Sprintf("%s at boundary %d: slab %d ends at %d, slab %d starts at %d", word, *s.MaxAmount, i, *s.MaxAmount, i+1, next),
				SlabIndex: i,
			})
		}
	}

	return errs
}

func validateFrequencies(slabs []Slab) []CatalogError {
	var errs []CatalogError

	for i, s := range slabs {
		if len(s.Rewards) == 0 {
			errs = append(errs, CatalogError{
				Kind:      ErrKindProbabilityMismatch,
				Message:   fmt.Sprintf("slab %d has no rewards", i),
				SlabIndex: i,
			})
			continue
		}

		sum := 0
		for _, r := range s.Rewards {
			if r.Frequency < 0 || r.Frequency > 100 {
				errs = append(errs, CatalogError{
					Kind:      ErrKindProbabilityMismatch,
					Message:   fmt.Sprintf("reward %s frequency %d is outside [0,100]", r.ID, r.Frequency),
					SlabIndex: i,
					RewardID:  r.ID,
				})
			}
			sum += r.Frequency
		}

		if sum != 100 {
			errs = append(errs, CatalogError{
				Kind:      ErrKindProbabilityMismatch,
				Message:   fmt.Sprintf("slab %d reward frequencies sum to %d, must be 100", i, sum),
				SlabIndex: i,
			})
		}
	}

	return errs
}

func validateAmountRanges(slabs []Slab) []CatalogError {
	var errs []CatalogError

	for i, s := range slabs {
		for _, r := range s.Rewards {
			if r.AmountRange == nil {
				continue
			}
			if r.AmountRange.Min < 0 || r.AmountRange.Max < r.AmountRange.Min {
				errs = append(errs, CatalogError{
					Kind:      ErrKindInvalidRange,
					Message:   fmt.Sprintf("reward %s amount range [%d, %d] is invalid", r.ID, r.AmountRange.Min, r.AmountRange.Max),
					SlabIndex: i,
					RewardID:  r.ID,
				})
			}
		}
	}

	return errs
}

// ValidateScratchRewards checks a scratch-card catalog. Two ordered
// categories, same short-circuit discipline as ValidateCampaign:
//
//  1. required type-specific fields present and positive (threshold for
//     primary, nth order for bonus, interval for daily, festival window for
//     seasonal), probability in [0,100]
//  2. seasonal windows ordered (dateFrom <= dateTo)
func ValidateScratchRewards(rewards []ScratchReward) []CatalogError {
	if errs := validateScratchFields(rewards); len(errs) > 0 {
		return errs
	}
	return validateScratchDates(rewards)
}

func validateScratchFields(rewards []ScratchReward) []CatalogError {
	var errs []CatalogError

	missing := func(r ScratchReward, field string) CatalogError {
		return CatalogError{
			Kind:      ErrKindMissingField,
			Message:   fmt.Sprintf("%s reward %s requires %s", r.Type, r.ID, field),
			SlabIndex: -1,
			RewardID:  r.ID,
		}
	}

	for _, r := range rewards {
		if r.Probability < 0 || r.Probability > 100 {
			errs = append(errs, CatalogError{
				Kind:      ErrKindProbabilityMismatch,
				Message:   fmt.Sprintf("reward %s probability %d is outside [0,100]", r.ID, r.Probability),
				SlabIndex: -1,
				RewardID:  r.ID,
			})
		}

		switch r.Type {
		case ScratchTypePrimary:
			if r.OrderValueThreshold == nil || *r.OrderValueThreshold < 0 {
				errs = append(errs, missing(r, "a non-negative order value threshold"))
			}
		case ScratchTypeBonus:
			if r.NthOrder == nil || *r.NthOrder < 1 {
				errs = append(errs, missing(r, "a positive nth order"))
			}
		case ScratchTypeDaily:
			if r.IntervalHours == nil || *r.IntervalHours < 1 {
				errs = append(errs, missing(r, "a positive interval in hours"))
			}
		case ScratchTypeSeasonal:
			if r.FestivalName == "" {
				errs = append(errs, missing(r, "a festival name"))
			}
			if r.DateFrom == nil || r.DateTo == nil {
				errs = append(errs, missing(r, "a date window"))
			}
		}
	}

	return errs
}

func validateScratchDates(rewards []ScratchReward) []CatalogError {
	var errs []CatalogError

	for _, r := range rewards {
		if r.Type != ScratchTypeSeasonal || r.DateFrom == nil || r.DateTo == nil {
			continue
		}
		if r.DateTo.Before(*r.DateFrom) {
			errs = append(errs, CatalogError{
				Kind:      ErrKindInvalidDateRange,
				Message:   fmt.Sprintf("seasonal reward %s window ends %s before it starts %s", r.ID, r.DateTo.Format("2006-01-02"), r.DateFrom.Format("2006-01-02")),
				SlabIndex: -1,
				RewardID:  r.ID,
			})
		}
	}

	return errs
}
