package postgresql

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campaignColumnNames = []string{
	"id", "user_id", "segment_id", "name", "description", "status", "start_date", "end_date",
	"total_users_targeted", "total_sent", "total_failed", "flow_data", "n8n_workflow_id",
	"n8n_workflow_url", "flow_version", "flow_updated_at", "execution_status", "execution_count",
	"last_executed_at", "created_at", "updated_at",
}

func newMockPersistence(t *testing.T) (*Persistence, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return newPersistence(db, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func campaignRow(id string, status models.CampaignStatus, flowData []byte, executedAt any) []driver.Value {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	return []driver.Value{
		id, int64(7), "seg-1", "Launch", "", string(status), start, start.Add(24 * time.Hour),
		int64(100), int64(10), int64(1), flowData, "wf-1", "http://n8n/workflow/wf-1",
		int64(2), nil, "running", int64(3), executedAt, start, start,
	}
}

func TestCampaignRepository_GetByID(t *testing.T) {
	p, mock := newMockPersistence(t)
	executedAt := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM campaigns WHERE id = \\$1").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(campaignColumnNames).AddRow(
			campaignRow("c-1", models.CampaignStatusRunning, []byte(`{"nodes":[{"id":"t","type":"trigger"}],"edges":[]}`), executedAt)...,
		))

	campaign, err := p.CampaignRepository().GetByID(context.Background(), "c-1")

	require.NoError(t, err)
	assert.Equal(t, "c-1", campaign.ID)
	assert.Equal(t, int64(7), campaign.UserID)
	assert.Equal(t, models.CampaignStatusRunning, campaign.Status)
	assert.Equal(t, models.ExecutionStatusRunning, campaign.ExecutionStatus)
	assert.Equal(t, 100, campaign.TotalUsersTargeted)
	assert.Equal(t, "wf-1", campaign.RemoteWorkflowID)
	assert.Equal(t, 2, campaign.FlowVersion)
	assert.Nil(t, campaign.FlowUpdatedAt)
	require.NotNil(t, campaign.LastExecutedAt)
	assert.True(t, executedAt.Equal(*campaign.LastExecutedAt))
	require.NotNil(t, campaign.FlowData)
	assert.Equal(t, models.NodeTypeTrigger, campaign.FlowData.Nodes[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_GetByID_NotFound(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery("SELECT .+ FROM campaigns").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(campaignColumnNames))

	_, err := p.CampaignRepository().GetByID(context.Background(), "missing")

	assert.True(t, persistence.IsCampaignNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_GetByID_DatabaseError(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery("SELECT .+ FROM campaigns").WillReturnError(errors.New("connection reset"))

	_, err := p.CampaignRepository().GetByID(context.Background(), "c-1")

	require.Error(t, err)
	assert.False(t, persistence.IsCampaignNotFound(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCampaignRepository_ListByStatus(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery("SELECT .+ FROM campaigns WHERE status = \\$1 ORDER BY created_at ASC").
		WithArgs("scheduled").
		WillReturnRows(sqlmock.NewRows(campaignColumnNames).
			AddRow(campaignRow("c-1", models.CampaignStatusScheduled, nil, nil)...).
			AddRow(campaignRow("c-2", models.CampaignStatusScheduled, nil, nil)...))

	campaigns, err := p.CampaignRepository().ListByStatus(context.Background(), models.CampaignStatusScheduled)

	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Nil(t, campaigns[0].FlowData)
	assert.Equal(t, "c-2", campaigns[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_ListByUser_Empty(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectQuery("SELECT .+ FROM campaigns WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(campaignColumnNames))

	campaigns, err := p.CampaignRepository().ListByUser(context.Background(), 9)

	require.NoError(t, err)
	assert.NotNil(t, campaigns)
	assert.Empty(t, campaigns)
}

func TestCampaignRepository_Save(t *testing.T) {
	p, mock := newMockPersistence(t)

	args := make([]driver.Value, len(campaignColumnNames))
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}

	args[0] = "c-1"
	args[5] = "draft"
	args[11] = []byte(`{"nodes":[],"edges":[]}`)

	mock.ExpectExec("INSERT INTO campaigns .+ ON CONFLICT \\(id\\) DO UPDATE SET").
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	campaign := &models.Campaign{
		ID:       "c-1",
		Status:   models.CampaignStatusDraft,
		FlowData: &models.FlowGraph{Nodes: []models.FlowNode{}, Edges: []models.FlowEdge{}},
	}

	require.NoError(t, p.CampaignRepository().Save(context.Background(), campaign))
	assert.False(t, campaign.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_Delete(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectExec("DELETE FROM campaigns WHERE id = \\$1").
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM campaigns").
		WithArgs("c-2").
		WillReturnError(errors.New("lock timeout"))

	repo := p.CampaignRepository()
	require.NoError(t, repo.Delete(context.Background(), "c-1"))
	assert.ErrorContains(t, repo.Delete(context.Background(), "c-2"), "lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_GetByID(t *testing.T) {
	p, mock := newMockPersistence(t)
	now := time.Now().UTC()

	columns := []string{"id", "user_id", "name", "s3_url", "s3_key", "file_name", "file_size", "total_records", "status", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT .+ FROM segments WHERE id = \\$1").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("s-1", int64(7), "VIPs", "s3://bucket/vips.csv", "vips.csv", "vips.csv", int64(2048), int64(250), "ready", now, now))
	mock.ExpectQuery("SELECT .+ FROM segments WHERE id = \\$1").
		WithArgs("s-2").
		WillReturnRows(sqlmock.NewRows(columns))

	repo := p.SegmentRepository()

	segment, err := repo.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, 250, segment.TotalRecords)
	assert.Equal(t, int64(2048), segment.FileSize)

	_, err = repo.GetByID(context.Background(), "s-2")
	assert.True(t, persistence.IsSegmentNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_Save(t *testing.T) {
	p, mock := newMockPersistence(t)

	mock.ExpectExec("INSERT INTO segments").
		WithArgs("s-1", int64(7), "VIPs", "", "", "", int64(0), 250, "ready", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	segment := &models.Segment{ID: "s-1", UserID: 7, Name: "VIPs", TotalRecords: 250, Status: "ready"}

	require.NoError(t, p.SegmentRepository().Save(context.Background(), segment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistence_HealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	p := newPersistence(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mock.ExpectPing()
	require.NoError(t, p.HealthCheck(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.ErrorContains(t, p.HealthCheck(context.Background()), "failed to ping database")

	mock.ExpectClose()
	require.NoError(t, p.Close(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
