// Package spinlimit provides the per-(campaign, user) spin counter stores.
// The contract is a single atomic check-and-increment: with a limit of n,
// exactly n reservations succeed for a key no matter how calls interleave.
package spinlimit

import (
	"context"
	"fmt"
)

// Tracker is implemented by spin counter stores.
type Tracker interface {
	// TryReserve reserves one spin if fewer than limit have been used for
	// the (campaignID, userID) pair. It returns false, without mutating
	// state, once the limit is reached.
	TryReserve(ctx context.Context, campaignID, userID string, limit int) (bool, error)

	// Used returns the number of spins consumed for the pair.
	Used(ctx context.Context, campaignID, userID string) (int, error)

	// ResetCampaign removes every record for a campaign. Called when a
	// campaign is deleted; individual records are never reset otherwise.
	ResetCampaign(ctx context.Context, campaignID string) error
}

func key(campaignID, userID string) string {
	return fmt.Sprintf("spins:%s:%s", campaignID, userID)
}
