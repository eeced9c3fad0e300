package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshdrop/rewards/internal/domain"
	apperrors "github.com/freshdrop/rewards/pkg/errors"
)

func int64Ptr(i int64) *int64 {
	return &i
}

func slabCatalog() *domain.Campaign {
	return &domain.Campaign{
		ID: "c1",
		Slabs: []domain.Slab{
			{MinAmount: 0, MaxAmount: int64Ptr(50000)},
			{MinAmount: 50000, MaxAmount: int64Ptr(100000)},
			{MinAmount: 100000},
		},
	}
}

func TestResolveSlab_Boundaries(t *testing.T) {
	c := slabCatalog()

	tests := []struct {
		amount int64
		want   int64 // MinAmount of the expected slab
	}{
		{0, 0},
		{49999, 0},
		{50000, 50000},
		{99999, 50000},
		{100000, 100000},
		{5000000, 100000},
	}

	for _, tt := range tests {
		slab, err := ResolveSlab(c, tt.amount)
		require.NoError(t, err, "amount %d", tt.amount)
		assert.Equal(t, tt.want, slab.MinAmount, "amount %d", tt.amount)
	}
}

func TestResolveSlab_NegativeAmount(t *testing.T) {
	_, err := ResolveSlab(slabCatalog(), -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResolveSlab_UnvalidatedCatalog(t *testing.T) {
	// A bounded last slab leaves amounts uncovered; the resolver reports it
	// instead of guessing.
	c := &domain.Campaign{
		ID: "c1",
		Slabs: []domain.Slab{
			{MinAmount: 0, MaxAmount: int64Ptr(100)},
		},
	}

	_, err := ResolveSlab(c, 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no slab covers")
}
