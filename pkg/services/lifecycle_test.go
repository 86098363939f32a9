package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/compiler"
	"github.com/dukex/campaigner/pkg/events"
	"github.com/dukex/campaigner/pkg/mocks"
	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/n8n"
	"github.com/dukex/campaigner/pkg/otelhelper"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/dukex/campaigner/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type lifecycleFixture struct {
	lifecycle *Lifecycle
	store     *file.Persistence
	remote    *mocks.MockRemoteWorkflowClient
	bus       *mocks.MockEventBus
	cache     *cache.Cache
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	remote := &mocks.MockRemoteWorkflowClient{}
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c := cache.New(cache.NewMemoryStore(), discardLogger())

	lifecycle := NewLifecycle(store, remote, compiler.New(compiler.Config{}), bus, c, discardLogger(), otelhelper.NoopTracer())
	lifecycle.now = func() time.Time { return fixedNow }

	return &lifecycleFixture{
		lifecycle: lifecycle,
		store:     store,
		remote:    remote,
		bus:       bus,
		cache:     c,
	}
}

func (f *lifecycleFixture) seed(t *testing.T, campaign *models.Campaign) {
	t.Helper()

	if campaign.UserID == 0 {
		campaign.UserID = 1
	}

	require.NoError(t, f.store.CampaignRepository().Save(context.Background(), campaign))
}

func (f *lifecycleFixture) load(t *testing.T, id string) *models.Campaign {
	t.Helper()

	campaign, err := f.store.CampaignRepository().GetByID(context.Background(), id)
	require.NoError(t, err)

	return campaign
}

func triggerWaitFlow() *models.FlowGraph {
	return &models.FlowGraph{
		Nodes: []models.FlowNode{
			{ID: "a", Type: models.NodeTypeTrigger},
			{
				ID:   "b",
				Type: models.NodeTypeWait,
				Data: models.FlowNodeData{
					Label:      "Wait 5",
					Properties: map[string]any{"amount": "5", "unit": "minutes"},
				},
			},
		},
		Edges: []models.FlowEdge{{ID: "e1", Source: "a", Target: "b"}},
	}
}

func TestTransitions_Table(t *testing.T) {
	assert.Equal(t, []models.CampaignStatus{models.CampaignStatusScheduled}, AllowedTransitions(models.CampaignStatusDraft))
	assert.Empty(t, AllowedTransitions(models.CampaignStatusCompleted))
	assert.True(t, CanTransition(models.CampaignStatusPaused, models.CampaignStatusRunning))
	assert.False(t, CanTransition(models.CampaignStatusDraft, models.CampaignStatusRunning))
	assert.False(t, CanTransition(models.CampaignStatusCompleted, models.CampaignStatusDraft))

	allowed := AllowedTransitions(models.CampaignStatusRunning)
	allowed[0] = models.CampaignStatusDraft
	assert.False(t, CanTransition(models.CampaignStatusRunning, models.CampaignStatusDraft))
}

func TestUpdateStatus_RejectedTransitionsLeaveCampaignUnchanged(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	for _, from := range models.CampaignStatuses {
		for _, to := range models.CampaignStatuses {
			if CanTransition(from, to) {
				continue
			}

			id := "c-" + string(from) + "-" + string(to)
			f.seed(t, &models.Campaign{ID: id, Status: from})

			result, err := f.lifecycle.UpdateStatus(ctx, id, to)

			require.Error(t, err, "%s -> %s", from, to)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			var transitionErr *InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, from, transitionErr.From)
			assert.Equal(t, to, transitionErr.To)
			assert.Equal(t, from, f.load(t, id).Status)
		}
	}

	f.remote.AssertNotCalled(t, "ActivateWorkflow", mock.Anything, mock.Anything)
	f.bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_AcceptedTransitions(t *testing.T) {
	tests := []struct {
		from          models.CampaignStatus
		to            models.CampaignStatus
		wantExecution models.ExecutionStatus
	}{
		{models.CampaignStatusDraft, models.CampaignStatusScheduled, ""},
		{models.CampaignStatusScheduled, models.CampaignStatusDraft, ""},
		{models.CampaignStatusScheduled, models.CampaignStatusRunning, models.ExecutionStatusActive},
		{models.CampaignStatusRunning, models.CampaignStatusPaused, models.ExecutionStatusPaused},
		{models.CampaignStatusRunning, models.CampaignStatusCompleted, models.ExecutionStatusCompleted},
		{models.CampaignStatusRunning, models.CampaignStatusFailed, models.ExecutionStatusFailed},
		{models.CampaignStatusPaused, models.CampaignStatusRunning, models.ExecutionStatusActive},
		{models.CampaignStatusPaused, models.CampaignStatusFailed, models.ExecutionStatusFailed},
		{models.CampaignStatusFailed, models.CampaignStatusDraft, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newLifecycleFixture(t)
			f.seed(t, &models.Campaign{ID: "c1", Status: tt.from})

			result, err := f.lifecycle.UpdateStatus(context.Background(), "c1", tt.to)

			require.NoError(t, err)
			assert.Equal(t, tt.from, result.From)
			assert.Equal(t, tt.to, result.To)
			assert.Empty(t, result.SideEffects)

			stored := f.load(t, "c1")
			assert.Equal(t, tt.to, stored.Status)
			assert.Equal(t, tt.wantExecution, stored.ExecutionStatus)
			assert.Equal(t, []events.EventType{events.CampaignStatusChangedEvent}, f.bus.PublishedTypes())
		})
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.UpdateStatus(context.Background(), "c1", "archived")

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.UpdateStatus(context.Background(), "missing", models.CampaignStatusScheduled)

	assert.True(t, persistence.IsCampaignNotFound(err))
}

func TestUpdateStatus_ActivatesWhenEnteringRunning(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Status: models.CampaignStatusScheduled, RemoteWorkflowID: "wf-1"})
	f.remote.On("ActivateWorkflow", mock.Anything, "wf-1").Return(nil)

	result, err := f.lifecycle.UpdateStatus(context.Background(), "c1", models.CampaignStatusRunning)

	require.NoError(t, err)
	require.Len(t, result.SideEffects, 1)
	assert.Equal(t, SideEffectActivate, result.SideEffects[0].Action)
	assert.True(t, result.SideEffects[0].Succeeded())
	assert.Empty(t, result.FailedSideEffects())
	f.remote.AssertExpectations(t)
}

func TestUpdateStatus_ActivationFailureIsNotFatal(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Status: models.CampaignStatusPaused, RemoteWorkflowID: "wf-1"})
	f.remote.On("ActivateWorkflow", mock.Anything, "wf-1").Return(n8n.ErrUnavailable)

	result, err := f.lifecycle.UpdateStatus(context.Background(), "c1", models.CampaignStatusRunning)

	require.NoError(t, err)
	failed := result.FailedSideEffects()
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, n8n.ErrUnavailable)
	assert.Equal(t, "wf-1", failed[0].WorkflowID)

	stored := f.load(t, "c1")
	assert.Equal(t, models.CampaignStatusRunning, stored.Status)
	assert.Equal(t, models.ExecutionStatusActive, stored.ExecutionStatus)
}

func TestUpdateStatus_DeactivatesWhenLeavingRunning(t *testing.T) {
	for _, to := range []models.CampaignStatus{
		models.CampaignStatusPaused,
		models.CampaignStatusCompleted,
		models.CampaignStatusFailed,
	} {
		t.Run(string(to), func(t *testing.T) {
			f := newLifecycleFixture(t)
			f.seed(t, &models.Campaign{ID: "c1", Status: models.CampaignStatusRunning, RemoteWorkflowID: "wf-1"})
			f.remote.On("DeactivateWorkflow", mock.Anything, "wf-1").Return(errors.New("boom"))

			result, err := f.lifecycle.UpdateStatus(context.Background(), "c1", to)

			require.NoError(t, err)
			require.Len(t, result.SideEffects, 1)
			assert.Equal(t, SideEffectDeactivate, result.SideEffects[0].Action)
			assert.False(t, result.SideEffects[0].Succeeded())
			assert.Equal(t, to, f.load(t, "c1").Status)
		})
	}
}

func TestUpdateStatus_InvalidatesCache(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	f.seed(t, &models.Campaign{ID: "c1", UserID: 4, Status: models.CampaignStatusDraft})

	f.cache.Set(ctx, campaignKey("c1"), "stale", time.Minute)
	f.cache.Set(ctx, campaignListKey(4), "stale", time.Minute)
	f.cache.Set(ctx, campaignStatsKey(4), "stale", time.Minute)

	_, err := f.lifecycle.UpdateStatus(ctx, "c1", models.CampaignStatusScheduled)
	require.NoError(t, err)

	var v string
	assert.False(t, f.cache.Get(ctx, campaignKey("c1"), &v))
	assert.False(t, f.cache.Get(ctx, campaignListKey(4), &v))
	assert.False(t, f.cache.Get(ctx, campaignStatsKey(4), &v))
}

func TestUpdateStatus_PublishFailureIsNotFatal(t *testing.T) {
	f := newLifecycleFixture(t)
	f.bus.ExpectedCalls = nil
	f.bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	f.seed(t, &models.Campaign{ID: "c1", Status: models.CampaignStatusDraft})

	_, err := f.lifecycle.UpdateStatus(context.Background(), "c1", models.CampaignStatusScheduled)

	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusScheduled, f.load(t, "c1").Status)
}

func TestSideEffect_MarshalJSON(t *testing.T) {
	ok, err := SideEffect{Action: SideEffectActivate, WorkflowID: "wf"}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"activate_workflow","workflowId":"wf","succeeded":true}`, string(ok))

	failed, err := SideEffect{Action: SideEffectDeactivate, WorkflowID: "wf", Err: errors.New("nope")}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"deactivate_workflow","workflowId":"wf","succeeded":false,"error":"nope"}`, string(failed))
}

func TestDeployFlow_CreatesWorkflow(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", Status: models.CampaignStatusDraft, FlowData: triggerWaitFlow()})

	f.remote.On("CreateWorkflow", mock.Anything, mock.MatchedBy(func(doc *models.WorkflowDocument) bool {
		return doc.Name == "Campaign: Spring" && len(doc.Nodes) == 2
	})).Return(&models.RemoteWorkflow{ID: "wf-1"}, nil)
	f.remote.On("ActivateWorkflow", mock.Anything, "wf-1").Return(nil)

	result, err := f.lifecycle.DeployFlow(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "wf-1", result.WorkflowID)
	assert.True(t, result.Created)
	assert.True(t, result.Activation.Succeeded())
	assert.Equal(t, 1, result.FlowVersion)
	assert.Equal(t, "http://localhost:5678/webhook/campaign-c1", result.WebhookURL)
	assert.Equal(t, "http://localhost:5678/webhook-test/campaign-c1", result.TestWebhookURL)
	assert.Equal(t, "http://localhost:5678/workflow/wf-1", result.WorkflowURL)

	stored := f.load(t, "c1")
	assert.Equal(t, "wf-1", stored.RemoteWorkflowID)
	assert.Equal(t, "http://localhost:5678/workflow/wf-1", stored.RemoteWorkflowURL)
	assert.Equal(t, 1, stored.FlowVersion)
	require.NotNil(t, stored.FlowUpdatedAt)
	assert.True(t, fixedNow.Equal(*stored.FlowUpdatedAt))
	assert.Equal(t, models.CampaignStatusDraft, stored.Status)

	assert.Equal(t, []events.EventType{events.CampaignDeployedEvent}, f.bus.PublishedTypes())
	f.remote.AssertNotCalled(t, "GetWorkflow", mock.Anything, mock.Anything)
}

func TestDeployFlow_UpdatesExistingWorkflow(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", FlowData: triggerWaitFlow(), RemoteWorkflowID: "wf-1", FlowVersion: 2})

	f.remote.On("GetWorkflow", mock.Anything, "wf-1").Return(&models.RemoteWorkflow{ID: "wf-1", Active: true}, nil)
	f.remote.On("UpdateWorkflow", mock.Anything, "wf-1", mock.Anything).Return(&models.RemoteWorkflow{ID: "wf-1"}, nil)
	f.remote.On("ActivateWorkflow", mock.Anything, "wf-1").Return(errors.New("already active"))

	result, err := f.lifecycle.DeployFlow(context.Background(), "c1")

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.False(t, result.Activation.Succeeded())
	assert.Equal(t, 3, result.FlowVersion)
	assert.Equal(t, 3, f.load(t, "c1").FlowVersion)
	f.remote.AssertNotCalled(t, "CreateWorkflow", mock.Anything, mock.Anything)
}

func TestDeployFlow_ReplacesStaleRemoteID(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", FlowData: triggerWaitFlow(), RemoteWorkflowID: "stale", FlowVersion: 5})

	f.remote.On("GetWorkflow", mock.Anything, "stale").Return(nil, nil)
	f.remote.On("CreateWorkflow", mock.Anything, mock.Anything).Return(&models.RemoteWorkflow{ID: "wf-new"}, nil)
	f.remote.On("ActivateWorkflow", mock.Anything, "wf-new").Return(nil)

	result, err := f.lifecycle.DeployFlow(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "wf-new", result.WorkflowID)
	assert.True(t, result.Created)

	stored := f.load(t, "c1")
	assert.Equal(t, "wf-new", stored.RemoteWorkflowID)
	assert.Equal(t, 6, stored.FlowVersion)
	f.remote.AssertNotCalled(t, "UpdateWorkflow", mock.Anything, mock.Anything, mock.Anything)
	f.remote.AssertNotCalled(t, "ActivateWorkflow", mock.Anything, "stale")
}

func TestDeployFlow_UsesTriggerWebhookPath(t *testing.T) {
	f := newLifecycleFixture(t)
	flow := triggerWaitFlow()
	flow.Nodes[0].Data.Properties = map[string]any{"webhookPath": "spring-sale"}
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", FlowData: flow})

	f.remote.On("CreateWorkflow", mock.Anything, mock.Anything).Return(&models.RemoteWorkflow{ID: "wf-1"}, nil)
	f.remote.On("ActivateWorkflow", mock.Anything, "wf-1").Return(nil)

	result, err := f.lifecycle.DeployFlow(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5678/webhook/spring-sale", result.WebhookURL)
	assert.Equal(t, "http://localhost:5678/webhook-test/spring-sale", result.TestWebhookURL)
}

func TestDeployFlow_Preconditions(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "empty"})
	f.seed(t, &models.Campaign{ID: "blank", FlowData: &models.FlowGraph{}})
	f.seed(t, &models.Campaign{ID: "invalid", FlowData: &models.FlowGraph{
		Nodes: []models.FlowNode{
			{ID: "a", Type: models.NodeTypeTrigger},
			{ID: "b", Type: models.NodeTypeWait, Data: models.FlowNodeData{Label: "Lonely"}},
		},
	}})

	_, err := f.lifecycle.DeployFlow(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrFlowDataRequired)

	_, err = f.lifecycle.DeployFlow(context.Background(), "blank")
	assert.ErrorIs(t, err, ErrFlowDataRequired)

	_, err = f.lifecycle.DeployFlow(context.Background(), "invalid")
	assert.ErrorIs(t, err, ErrFlowInvalid)
	assert.True(t, IsValidationError(err))

	var validationErr *compiler.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{`Node "Lonely" is not connected`}, validationErr.Errors)

	_, err = f.lifecycle.DeployFlow(context.Background(), "missing")
	assert.True(t, persistence.IsCampaignNotFound(err))

	assert.Empty(t, f.remote.Calls)
}

func TestDeployFlow_RemoteFailure(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", FlowData: triggerWaitFlow()})

	authErr := fmt.Errorf("create workflow: %w", n8n.ErrAuthFailed)
	f.remote.On("CreateWorkflow", mock.Anything, mock.Anything).Return(nil, authErr)

	_, err := f.lifecycle.DeployFlow(context.Background(), "c1")

	require.Error(t, err)
	assert.True(t, IsRemoteError(err))
	assert.True(t, IsRemoteAuthError(err))
	assert.Contains(t, err.Error(), "n8n authentication failed")

	stored := f.load(t, "c1")
	assert.Empty(t, stored.RemoteWorkflowID)
	assert.Equal(t, 0, stored.FlowVersion)
	assert.Empty(t, f.bus.PublishedTypes())
}

func TestTriggerCampaign_Production(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", SegmentID: "s1", FlowData: triggerWaitFlow(), RemoteWorkflowID: "wf-1"})

	f.remote.On("InvokeProductionWebhook", mock.Anything, "campaign-c1", mock.MatchedBy(func(p map[string]any) bool {
		return p["campaignId"] == "c1" &&
			p["campaignName"] == "Spring" &&
			p["segmentId"] == "s1" &&
			p["triggeredAt"] == "2026-03-04T10:00:00Z" &&
			p["batch"] == "b-1"
	})).Return(&models.WebhookResult{Data: map[string]any{"ok": true}}, nil)

	result, err := f.lifecycle.TriggerCampaign(context.Background(), "c1", map[string]any{"batch": "b-1"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, TriggerModeProduction, result.Mode)
	assert.False(t, result.Background)
	assert.Equal(t, 1, result.ExecutionCount)
	assert.Equal(t, "Campaign triggered successfully", result.Message)

	stored := f.load(t, "c1")
	assert.Equal(t, 1, stored.ExecutionCount)
	assert.Equal(t, models.ExecutionStatusRunning, stored.ExecutionStatus)
	require.NotNil(t, stored.LastExecutedAt)
	assert.True(t, fixedNow.Equal(*stored.LastExecutedAt))
	assert.Equal(t, []events.EventType{events.CampaignTriggeredEvent}, f.bus.PublishedTypes())
	f.remote.AssertNotCalled(t, "InvokeTestWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestTriggerCampaign_CallerPayloadOverridesDefaults(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", Name: "Spring", RemoteWorkflowID: "wf-1", FlowData: triggerWaitFlow()})

	f.remote.On("InvokeProductionWebhook", mock.Anything, mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
		return p["campaignName"] == "Override"
	})).Return(&models.WebhookResult{}, nil)

	_, err := f.lifecycle.TriggerCampaign(context.Background(), "c1", map[string]any{"campaignName": "Override"})

	require.NoError(t, err)
}

func TestTriggerCampaign_TimeoutCountsAsAccepted(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", FlowData: triggerWaitFlow(), RemoteWorkflowID: "wf-1", ExecutionCount: 2})

	f.remote.On("InvokeProductionWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&models.WebhookResult{
		Accepted: true,
		Status:   "accepted",
		Message:  "Workflow triggered (running in background)",
	}, nil)

	result, err := f.lifecycle.TriggerCampaign(context.Background(), "c1", nil)

	require.NoError(t, err)
	assert.True(t, result.Background)
	assert.Contains(t, result.Message, "background")
	assert.Equal(t, 3, result.ExecutionCount)
	assert.Equal(t, 3, f.load(t, "c1").ExecutionCount)
}

func TestTriggerCampaign_FallsBackToTestWebhook(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", FlowData: triggerWaitFlow(), RemoteWorkflowID: "wf-1"})

	f.remote.On("InvokeProductionWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil, n8n.ErrNotFound)
	f.remote.On("InvokeTestWebhook", mock.Anything, "campaign-c1", mock.Anything).Return(&models.WebhookResult{}, nil)

	result, err := f.lifecycle.TriggerCampaign(context.Background(), "c1", nil)

	require.NoError(t, err)
	assert.Equal(t, TriggerModeTest, result.Mode)
	assert.Equal(t, 1, f.load(t, "c1").ExecutionCount)
}

func TestTriggerCampaign_BothWebhooksFail(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", FlowData: triggerWaitFlow(), RemoteWorkflowID: "wf-1"})

	f.remote.On("InvokeProductionWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil, n8n.ErrNotFound)
	f.remote.On("InvokeTestWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil, n8n.ErrWebhookNotAvailable)

	_, err := f.lifecycle.TriggerCampaign(context.Background(), "c1", nil)

	require.Error(t, err)
	assert.True(t, IsRemoteError(err))
	assert.ErrorIs(t, err, n8n.ErrWebhookNotAvailable)

	stored := f.load(t, "c1")
	assert.Equal(t, 0, stored.ExecutionCount)
	assert.Nil(t, stored.LastExecutedAt)
	assert.Empty(t, f.bus.PublishedTypes())
}

func TestTriggerCampaign_NotDeployed(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1", FlowData: triggerWaitFlow()})

	_, err := f.lifecycle.TriggerCampaign(context.Background(), "c1", nil)

	assert.ErrorIs(t, err, ErrNotDeployed)
	assert.Empty(t, f.remote.Calls)
}

func TestExecutionStatus_NotDeployed(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "c1"})

	report, err := f.lifecycle.ExecutionStatus(context.Background(), "c1")

	require.NoError(t, err)
	assert.False(t, report.IsDeployed)
	assert.NotNil(t, report.Executions)
	assert.Empty(t, report.Executions)
	assert.Empty(t, report.Error)
	assert.Empty(t, f.remote.Calls)
}

func TestExecutionStatus_Deployed(t *testing.T) {
	f := newLifecycleFixture(t)
	last := fixedNow.Add(-time.Hour)
	f.seed(t, &models.Campaign{
		ID:               "c1",
		RemoteWorkflowID: "wf-1",
		FlowVersion:      2,
		ExecutionCount:   7,
		LastExecutedAt:   &last,
		ExecutionStatus:  models.ExecutionStatusRunning,
	})

	executions := []models.RemoteExecution{{ID: "e1", Status: "success", Finished: true}}
	f.remote.On("GetWorkflow", mock.Anything, "wf-1").Return(&models.RemoteWorkflow{ID: "wf-1", Active: true}, nil)
	f.remote.On("ListExecutions", mock.Anything, "wf-1", n8n.ListExecutionsOptions{Limit: RecentExecutionsLimit}).Return(executions, nil)

	report, err := f.lifecycle.ExecutionStatus(context.Background(), "c1")

	require.NoError(t, err)
	assert.True(t, report.IsDeployed)
	assert.True(t, report.WorkflowActive)
	assert.Equal(t, executions, report.Executions)
	assert.Equal(t, 2, report.FlowVersion)
	assert.Equal(t, 7, report.ExecutionCount)
	assert.Equal(t, models.ExecutionStatusRunning, report.ExecutionStatus)
	assert.Empty(t, report.Error)
}

func TestExecutionStatus_DegradesOnRemoteFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(remote *mocks.MockRemoteWorkflowClient)
	}{
		{
			name: "workflow fetch fails",
			setup: func(remote *mocks.MockRemoteWorkflowClient) {
				remote.On("GetWorkflow", mock.Anything, "wf-1").Return(nil, n8n.ErrUnavailable)
			},
		},
		{
			name: "workflow gone",
			setup: func(remote *mocks.MockRemoteWorkflowClient) {
				remote.On("GetWorkflow", mock.Anything, "wf-1").Return(nil, nil)
			},
		},
		{
			name: "executions fail",
			setup: func(remote *mocks.MockRemoteWorkflowClient) {
				remote.On("GetWorkflow", mock.Anything, "wf-1").Return(&models.RemoteWorkflow{ID: "wf-1"}, nil)
				remote.On("ListExecutions", mock.Anything, "wf-1", mock.Anything).Return(nil, n8n.ErrAuthFailed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLifecycleFixture(t)
			f.seed(t, &models.Campaign{ID: "c1", RemoteWorkflowID: "wf-1"})
			tt.setup(f.remote)

			report, err := f.lifecycle.ExecutionStatus(context.Background(), "c1")

			require.NoError(t, err)
			assert.True(t, report.IsDeployed)
			assert.NotEmpty(t, report.Error)
			assert.NotNil(t, report.Executions)
			assert.Empty(t, report.Executions)
		})
	}
}

func TestExecutionStatus_UnknownCampaign(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.ExecutionStatus(context.Background(), "missing")

	assert.True(t, persistence.IsCampaignNotFound(err))
}

func TestValidateFlow(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed(t, &models.Campaign{ID: "ok", FlowData: triggerWaitFlow()})
	f.seed(t, &models.Campaign{ID: "none"})

	result, err := f.lifecycle.ValidateFlow(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = f.lifecycle.ValidateFlow(context.Background(), "none")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, compiler.MessageNoNodes)
}

func TestRemoteConnection(t *testing.T) {
	f := newLifecycleFixture(t)
	f.remote.On("TestConnection", mock.Anything).Return(true).Once()
	f.remote.On("TestConnection", mock.Anything).Return(false).Once()

	assert.True(t, f.lifecycle.RemoteConnection(context.Background()))
	assert.False(t, f.lifecycle.RemoteConnection(context.Background()))
}
