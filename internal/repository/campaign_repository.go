package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// CampaignRepositoryInterface persists dispatched campaigns. Campaigns are
// append-only: each is written once after its batch settled.
type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Campaign, int, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error)
	GetStats(ctx context.Context, id string) (model.CampaignStats, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Writes ======================

// textArray binds values as a TEXT[]; nil becomes '{}' for NOT NULL columns.
func textArray(values []string) interface{} {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}

// Create stores the campaign and its recipients in one transaction.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	attachments := c.Attachments
	if attachments == nil {
		attachments = []model.AttachmentMetadata{}
	}
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO campaigns (id, owner_id, from_address, subject, body, variable_names, attachments, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, c.ID, c.OwnerID, c.FromAddress, c.Subject, c.Body, textArray(c.VariableNames), attachmentsJSON, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}

	for i, rec := range c.Recipients {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO campaign_recipients (campaign_id, position, email, variable_values, send_succeeded, error_detail)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, c.ID, i, rec.Email, textArray(rec.VariableValues), rec.SendSucceeded, rec.ErrorDetail)
		if err != nil {
			return fmt.Errorf("failed to insert recipient %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit campaign: %w", err)
	}
	return nil
}

// ====================== Reads ======================

const campaignColumns = `id, owner_id, from_address, subject, body, variable_names, attachments, created_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	c := &model.Campaign{}
	var attachments []byte
	if err := row.Scan(&c.ID, &c.OwnerID, &c.FromAddress, &c.Subject, &c.Body,
		pq.Array(&c.VariableNames), &attachments, &c.CreatedAt); err != nil {
		return nil, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &c.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments of campaign %s: %w", c.ID, err)
		}
	}
	if len(c.Attachments) == 0 {
		c.Attachments = nil
	}
	return c, nil
}

// ListByOwner returns one page of the owner's campaigns, newest first, and
// the owner's total campaign count.
func (r *CampaignRepository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Campaign, int, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT `+campaignColumns+`
        FROM campaigns
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	byID := map[string]*model.Campaign{}
	ids := []string{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		if err := r.loadRecipients(ctx, ids, byID); err != nil {
			return nil, 0, err
		}
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// GetByID returns the campaign if it exists and belongs to ownerID.
func (r *CampaignRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT `+campaignColumns+`
        FROM campaigns
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID)

	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, err
	}

	if err := r.loadRecipients(ctx, []string{id}, map[string]*model.Campaign{id: c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) loadRecipients(ctx context.Context, ids []string, byID map[string]*model.Campaign) error {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT campaign_id, email, variable_values, send_succeeded, error_detail
        FROM campaign_recipients
        WHERE campaign_id = ANY($1)
        ORDER BY campaign_id, position
    `, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID string
		var rec model.Recipient
		if err := rows.Scan(&campaignID, &rec.Email, pq.Array(&rec.VariableValues), &rec.SendSucceeded, &rec.ErrorDetail); err != nil {
			return err
		}
		if c, ok := byID[campaignID]; ok {
			c.Recipients = append(c.Recipients, rec)
		}
	}
	return rows.Err()
}

// GetStats counts the recipient outcomes of a campaign.
func (r *CampaignRepository) GetStats(ctx context.Context, id string) (model.CampaignStats, error) {
	var stats model.CampaignStats
	err := r.DB.QueryRowContext(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE send_succeeded)
        FROM campaign_recipients
        WHERE campaign_id = $1
    `, id).Scan(&stats.Total, &stats.Succeeded)
	if err != nil {
		return model.CampaignStats{}, err
	}
	stats.Failed = stats.Total - stats.Succeeded
	return stats, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
