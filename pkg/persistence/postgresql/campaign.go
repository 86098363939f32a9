package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
)

const campaignColumns = `
			id
		  , user_id
		  , segment_id
		  , name
		  , description
		  , status
		  , start_date
		  , end_date
		  , total_users_targeted
		  , total_sent
		  , total_failed
		  , flow_data
		  , n8n_workflow_id
		  , n8n_workflow_url
		  , flow_version
		  , flow_updated_at
		  , execution_status
		  , execution_count
		  , last_executed_at
		  , created_at
		  , updated_at`

// CampaignRepository handles campaign-related database operations.
type CampaignRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(db *sql.DB, logger *slog.Logger) *CampaignRepository {
	return &CampaignRepository{db: db, logger: logger}
}

// GetByID returns a campaign by its ID.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewCampaignError("GetByID", id, persistence.ErrCampaignNotFound)
	}

	if err != nil {
		return nil, persistence.NewCampaignError("GetByID", id, err)
	}

	return campaign, nil
}

// ListByUser returns the user's campaigns, newest first.
func (r *CampaignRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return r.list(ctx, query, userID)
}

// ListByStatus returns campaigns in the given status, oldest first.
func (r *CampaignRepository) ListByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE status = $1
		ORDER BY created_at ASC`

	return r.list(ctx, query, string(status))
}

// Save inserts the campaign or replaces the stored row with the same id.
func (r *CampaignRepository) Save(ctx context.Context, campaign *models.Campaign) error {
	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}

	campaign.UpdatedAt = now

	var flowData []byte

	if campaign.FlowData != nil {
		data, err := json.Marshal(campaign.FlowData)
		if err != nil {
			return persistence.NewCampaignError("Save", campaign.ID, fmt.Errorf("failed to marshal flow data: %w", err))
		}

		flowData = data
	}

	query := `
		INSERT INTO campaigns (` + campaignColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			segment_id = EXCLUDED.segment_id
		  , name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , status = EXCLUDED.status
		  , start_date = EXCLUDED.start_date
		  , end_date = EXCLUDED.end_date
		  , total_users_targeted = EXCLUDED.total_users_targeted
		  , total_sent = EXCLUDED.total_sent
		  , total_failed = EXCLUDED.total_failed
		  , flow_data = EXCLUDED.flow_data
		  , n8n_workflow_id = EXCLUDED.n8n_workflow_id
		  , n8n_workflow_url = EXCLUDED.n8n_workflow_url
		  , flow_version = EXCLUDED.flow_version
		  , flow_updated_at = EXCLUDED.flow_updated_at
		  , execution_status = EXCLUDED.execution_status
		  , execution_count = EXCLUDED.execution_count
		  , last_executed_at = EXCLUDED.last_executed_at
		  , updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		campaign.ID,
		campaign.UserID,
		campaign.SegmentID,
		campaign.Name,
		campaign.Description,
		string(campaign.Status),
		campaign.StartDate,
		campaign.EndDate,
		campaign.TotalUsersTargeted,
		campaign.TotalSent,
		campaign.TotalFailed,
		flowData,
		campaign.RemoteWorkflowID,
		campaign.RemoteWorkflowURL,
		campaign.FlowVersion,
		nullTime(campaign.FlowUpdatedAt),
		string(campaign.ExecutionStatus),
		campaign.ExecutionCount,
		nullTime(campaign.LastExecutedAt),
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	return nil
}

// Delete removes a campaign. Deleting a missing campaign is not an error.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return persistence.NewCampaignError("Delete", id, err)
	}

	return nil
}

func (r *CampaignRepository) list(ctx context.Context, query string, args ...any) ([]*models.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer closeRows(ctx, r.logger, rows)

	campaigns := make([]*models.Campaign, 0)

	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}

		campaigns = append(campaigns, campaign)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row scanner) (*models.Campaign, error) {
	var (
		campaign        models.Campaign
		status          string
		executionStatus string
		flowData        []byte
		flowUpdatedAt   sql.NullTime
		lastExecutedAt  sql.NullTime
	)

	err := row.Scan(
		&campaign.ID,
		&campaign.UserID,
		&campaign.SegmentID,
		&campaign.Name,
		&campaign.Description,
		&status,
		&campaign.StartDate,
		&campaign.EndDate,
		&campaign.TotalUsersTargeted,
		&campaign.TotalSent,
		&campaign.TotalFailed,
		&flowData,
		&campaign.RemoteWorkflowID,
		&campaign.RemoteWorkflowURL,
		&campaign.FlowVersion,
		&flowUpdatedAt,
		&executionStatus,
		&campaign.ExecutionCount,
		&lastExecutedAt,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.Status = models.CampaignStatus(status)
	campaign.ExecutionStatus = models.ExecutionStatus(executionStatus)
	campaign.FlowUpdatedAt = timePtr(flowUpdatedAt)
	campaign.LastExecutedAt = timePtr(lastExecutedAt)

	if len(flowData) > 0 {
		var graph models.FlowGraph
		if err := json.Unmarshal(flowData, &graph); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flow data: %w", err)
		}

		campaign.FlowData = &graph
	}

	return &campaign, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	return &t.Time
}
