package engine

import (
	"fmt"

	apperrors "github.com/freshdrop/rewards/pkg/errors"
	"github.com/freshdrop/rewards/internal/domain"
)

// ResolveSlab finds the slab containing the given order amount. The campaign
// must have passed the catalog validator, in which case exactly one slab
// matches any non-negative amount. A negative amount is a caller bug, not a
// business condition, and is rejected loudly.
func ResolveSlab(c *domain.Campaign, orderAmount int64) (*domain.Slab, error) {
	if orderAmount < 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("order amount %d must not be negative", orderAmount))
	}

	for i := range c.Slabs {
		if c.Slabs[i].Contains(orderAmount) {
			return &c.Slabs[i], nil
		}
	}

	return nil, fmt.Errorf("no slab covers amount %d: campaign %s was not validated", orderAmount, c.ID)
}
