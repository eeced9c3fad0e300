package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshdrop/rewards/internal/domain"
	"github.com/freshdrop/rewards/pkg/database"
)

func setupOutcomeRepo(t *testing.T) (*OutcomeRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewOutcomeRepository(mock)
	return repo, mock
}

func sampleSpinOutcome() *domain.SpinOutcome {
	value := int64(2500)
	return &domain.SpinOutcome{
		ID:            "outcome-001",
		CampaignID:    "camp-001",
		UserID:        "user-001",
		RewardID:      "r1",
		RewardType:    domain.RewardTypeWalletCredit,
		ResolvedValue: &value,
		CreatedAt:     time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// RecordSpin
// ---------------------------------------------------------------------------

func TestOutcomeRepository_RecordSpin_Success(t *testing.T) {
	repo, mock := setupOutcomeRepo(t)
	defer mock.Close()

	o := sampleSpinOutcome()

	mock.ExpectExec("INSERT INTO spin_outcomes").
		WithArgs(
			o.ID, o.CampaignID, o.UserID, o.RewardID, o.RewardType,
			o.ResolvedValue, o.CouponCode, o.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.RecordSpin(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepository_RecordSpin_TryAgainHasNoValue(t *testing.T) {
	repo, mock := setupOutcomeRepo(t)
	defer mock.Close()

	o := sampleSpinOutcome()
	o.RewardType = domain.RewardTypeTryAgain
	o.ResolvedValue = nil

	mock.ExpectExec("INSERT INTO spin_outcomes").
		WithArgs(
			o.ID, o.CampaignID, o.UserID, o.RewardID, o.RewardType,
			o.ResolvedValue, o.CouponCode, o.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.RecordSpin(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepository_RecordSpin_Error(t *testing.T) {
	repo, mock := setupOutcomeRepo(t)
	defer mock.Close()

	o := sampleSpinOutcome()

	mock.ExpectExec("INSERT INTO spin_outcomes").
		WithArgs(
			o.ID, o.CampaignID, o.UserID, o.RewardID, o.RewardType,
			o.ResolvedValue, o.CouponCode, o.CreatedAt,
		).
		WillReturnError(errors.New("foreign key violation"))

	err := repo.RecordSpin(context.Background(), o)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert spin outcome")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// RecordScratch
// ---------------------------------------------------------------------------

func TestOutcomeRepository_RecordScratch_Success(t *testing.T) {
	repo, mock := setupOutcomeRepo(t)
	defer mock.Close()

	o := &domain.ScratchOutcome{
		ID:          "outcome-002",
		RewardID:    "scratch-001",
		RewardType:  domain.ScratchTypeReferral,
		RewardName:  "Referral Cash",
		UserID:      "user-001",
		RewardValue: 10000,
		TriggerKind: domain.TriggerReferralCompleted,
		CreatedAt:   time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO scratch_outcomes").
		WithArgs(
			o.ID, o.RewardID, o.RewardType, o.RewardName, o.UserID,
			o.RewardValue, o.TriggerKind, o.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.RecordScratch(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListSpinsByUser
// ---------------------------------------------------------------------------

func TestOutcomeRepository_ListSpinsByUser_Success(t *testing.T) {
	repo, mock := setupOutcomeRepo(t)
	defer mock.Close()

	o1 := sampleSpinOutcome()
	o2 := sampleSpinOutcome()
	o2.ID = "outcome-003"
	o2.RewardType = domain.RewardTypeTryAgain
	o2.ResolvedValue = nil
	o2.CreatedAt = o1.CreatedAt.Add(-time.Hour)

	rows := pgxmock.NewRows([]string{
		"id", "campaign_id", "user_id", "reward_id", "reward_type",
		"resolved_value", "coupon_code", "created_at",
	}).
		AddRow(o1.ID, o1.CampaignID, o1.UserID, o1.RewardID, o1.RewardType, o1.ResolvedValue, o1.CouponCode, o1.CreatedAt).
		AddRow(o2.ID, o2.CampaignID, o2.UserID, o2.RewardID, o2.RewardType, o2.ResolvedValue, o2.CouponCode, o2.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM spin_outcomes WHERE user_id").
		WithArgs("user-001", 20).
		WillReturnRows(rows)

	outcomes, err := repo.ListSpinsByUser(context.Background(), "user-001", 20)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "outcome-001", outcomes[0].ID)
	require.NotNil(t, outcomes[0].ResolvedValue)
	assert.Equal(t, int64(2500), *outcomes[0].ResolvedValue)

	assert.Equal(t, "outcome-003", outcomes[1].ID)
	assert.Nil(t, outcomes[1].ResolvedValue)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepository_ListSpinsByUser_Empty(t *testing.T) {
	repo, mock := setupOutcomeRepo(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "campaign_id", "user_id", "reward_id", "reward_type",
		"resolved_value", "coupon_code", "created_at",
	})

	mock.ExpectQuery("SELECT .+ FROM spin_outcomes WHERE user_id").
		WithArgs("user-none", 20).
		WillReturnRows(rows)

	outcomes, err := repo.ListSpinsByUser(context.Background(), "user-none", 20)
	require.NoError(t, err)
	assert.NotNil(t, outcomes) // should be [] not nil
	assert.Empty(t, outcomes)

	assert.NoError(t, mock.ExpectationsWereMet())
}
