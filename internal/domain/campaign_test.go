package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(i int64) *int64 {
	return &i
}

func TestSlab_Contains(t *testing.T) {
	bounded := Slab{MinAmount: 100, MaxAmount: int64Ptr(500)}
	unbounded := Slab{MinAmount: 500}

	tests := []struct {
		name   string
		slab   Slab
		amount int64
		want   bool
	}{
		{"below min", bounded, 99, false},
		{"at min inclusive", bounded, 100, true},
		{"inside", bounded, 300, true},
		{"at max exclusive", bounded, 500, false},
		{"above max", bounded, 501, false},
		{"unbounded at min", unbounded, 500, true},
		{"unbounded large", unbounded, 10_000_000, true},
		{"unbounded below min", unbounded, 499, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slab.Contains(tt.amount))
		})
	}
}

func TestCampaign_IsActive(t *testing.T) {
	for _, status := range ValidStatuses() {
		c := Campaign{Status: status}
		assert.Equal(t, status == CampaignStatusActive, c.IsActive(), "status %s", status)
	}
}

func TestCampaign_Expired(t *testing.T) {
	now := time.Now().UTC()
	c := Campaign{ExpiryDate: now}

	assert.False(t, c.Expired(now), "expiry instant itself is not expired")
	assert.False(t, c.Expired(now.Add(-time.Second)))
	assert.True(t, c.Expired(now.Add(time.Second)))
}

func TestCampaign_EligibleFor(t *testing.T) {
	tests := []struct {
		name        string
		eligibility []string
		segment     string
		want        bool
	}{
		{"all admits any segment", []string{SegmentAll}, SegmentReturning, true},
		{"all admits unknown segment string", []string{SegmentAll}, "something_else", true},
		{"exact match", []string{SegmentNewUsers, SegmentReferral}, SegmentReferral, true},
		{"no match", []string{SegmentNewUsers}, SegmentReturning, false},
		{"empty set admits nothing", nil, SegmentAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Campaign{Eligibility: tt.eligibility}
			assert.Equal(t, tt.want, c.EligibleFor(tt.segment))
		})
	}
}

func TestIsValidRewardType(t *testing.T) {
	for _, rt := range ValidRewardTypes() {
		assert.True(t, IsValidRewardType(rt), rt)
	}
	assert.False(t, IsValidRewardType("cashback"))
	assert.False(t, IsValidRewardType(""))
}

func TestIsValidSegment(t *testing.T) {
	for _, s := range ValidSegments() {
		assert.True(t, IsValidSegment(s), s)
	}
	assert.False(t, IsValidSegment("vip"))
	assert.False(t, IsValidSegment(""))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("deleted"))
	assert.False(t, IsValidStatus(""))
}
