package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/freshdrop/rewards/internal/domain"
	"github.com/freshdrop/rewards/internal/repository"
	"github.com/freshdrop/rewards/pkg/database"
	apperrors "github.com/freshdrop/rewards/pkg/errors"
)

// CampaignRepository implements repository.CampaignRepository using
// PostgreSQL. Slabs and eligibility are stored as JSONB: the slab catalog is
// an immutable-once-activated aggregate read and written whole, never
// queried per row.
type CampaignRepository struct {
	pool database.DBTX
}

// NewCampaignRepository creates a new PostgreSQL-backed campaign repository.
func NewCampaignRepository(pool database.DBTX) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `id, name, slug, description, status, expiry_date,
		spin_limit_per_user, eligibility, slabs, created_at, updated_at`

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	eligibilityJSON, slabsJSON, err := marshalCatalog(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.Status,
		c.ExpiryDate,
		c.SpinLimitPerUser,
		eligibilityJSON,
		slabsJSON,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("campaign", "id", c.ID)
		}
		return fmt.Errorf("insert campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign by its ID.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("campaign", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select campaign: %w", err)
	}
	return c, nil
}

// List returns campaigns matching the filter with the total count.
func (r *CampaignRepository) List(ctx context.Context, filter repository.CampaignFilter) ([]domain.Campaign, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM campaigns" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT "+campaignColumns+" FROM campaigns%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, argIndex, argIndex+1,
	)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []domain.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate campaigns: %w", err)
	}

	return campaigns, total, nil
}

// Update modifies an existing campaign.
func (r *CampaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	eligibilityJSON, slabsJSON, err := marshalCatalog(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE campaigns
		SET name = $2, slug = $3, description = $4, status = $5, expiry_date = $6,
			spin_limit_per_user = $7, eligibility = $8, slabs = $9, updated_at = $10
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.Status,
		c.ExpiryDate,
		c.SpinLimitPerUser,
		eligibilityJSON,
		slabsJSON,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("campaign", c.ID)
	}

	return nil
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("campaign", id)
	}
	return nil
}

func marshalCatalog(c *domain.Campaign) (eligibility, slabs []byte, err error) {
	eligibility, err = json.Marshal(c.Eligibility)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal eligibility: %w", err)
	}
	slabs, err = json.Marshal(c.Slabs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal slabs: %w", err)
	}
	return eligibility, slabs, nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c               domain.Campaign
		eligibilityJSON []byte
		slabsJSON       []byte
	)

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Status,
		&c.ExpiryDate,
		&c.SpinLimitPerUser,
		&eligibilityJSON,
		&slabsJSON,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(eligibilityJSON, &c.Eligibility); err != nil {
		return nil, fmt.Errorf("unmarshal eligibility: %w", err)
	}
	if err := json.Unmarshal(slabsJSON, &c.Slabs); err != nil {
		return nil, fmt.Errorf("unmarshal slabs: %w", err)
	}

	return &c, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
