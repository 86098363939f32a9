package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/compiler"
	"github.com/dukex/campaigner/pkg/eventbus"
	"github.com/dukex/campaigner/pkg/events"
	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/n8n"
	"github.com/dukex/campaigner/pkg/otelhelper"
	"github.com/dukex/campaigner/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecentExecutionsLimit is how many remote executions a status report lists.
const RecentExecutionsLimit = 10

var transitions = map[models.CampaignStatus][]models.CampaignStatus{
	models.CampaignStatusDraft:     {models.CampaignStatusScheduled},
	models.CampaignStatusScheduled: {models.CampaignStatusRunning, models.CampaignStatusDraft},
	models.CampaignStatusRunning:   {models.CampaignStatusPaused, models.CampaignStatusCompleted, models.CampaignStatusFailed},
	models.CampaignStatusPaused:    {models.CampaignStatusRunning, models.CampaignStatusFailed},
	models.CampaignStatusCompleted: {},
	models.CampaignStatusFailed:    {models.CampaignStatusDraft},
}

// executionMirror maps a campaign status to the execution status it implies.
var executionMirror = map[models.CampaignStatus]models.ExecutionStatus{
	models.CampaignStatusRunning:   models.ExecutionStatusActive,
	models.CampaignStatusCompleted: models.ExecutionStatusCompleted,
	models.CampaignStatusFailed:    models.ExecutionStatusFailed,
	models.CampaignStatusPaused:    models.ExecutionStatusPaused,
}

// CanTransition reports whether a campaign may move from one status to another.
func CanTransition(from, to models.CampaignStatus) bool {
	return slices.Contains(transitions[from], to)
}

// AllowedTransitions lists the statuses reachable from a status.
func AllowedTransitions(from models.CampaignStatus) []models.CampaignStatus {
	return slices.Clone(transitions[from])
}

type SideEffectAction string

const (
	SideEffectActivate   SideEffectAction = "activate_workflow"
	SideEffectDeactivate SideEffectAction = "deactivate_workflow"
)

// SideEffect is the outcome of a best-effort remote call made on behalf of a
// primary operation. A failed side effect never fails the operation.
type SideEffect struct {
	Action     SideEffectAction
	WorkflowID string
	Err        error
}

func (s SideEffect) Succeeded() bool {
	return s.Err == nil
}

func (s SideEffect) MarshalJSON() ([]byte, error) {
	out := struct {
		Action     SideEffectAction `json:"action"`
		WorkflowID string           `json:"workflowId"`
		Succeeded  bool             `json:"succeeded"`
		Error      string           `json:"error,omitempty"`
	}{
		Action:     s.Action,
		WorkflowID: s.WorkflowID,
		Succeeded:  s.Succeeded(),
	}

	if s.Err != nil {
		out.Error = s.Err.Error()
	}

	return json.Marshal(out)
}

// TransitionResult is returned by an accepted status change.
type TransitionResult struct {
	Campaign    *models.Campaign      `json:"campaign"`
	From        models.CampaignStatus `json:"from"`
	To          models.CampaignStatus `json:"to"`
	SideEffects []SideEffect          `json:"sideEffects"`
}

// FailedSideEffects returns the side effects that did not succeed.
func (r *TransitionResult) FailedSideEffects() []SideEffect {
	failed := make([]SideEffect, 0)

	for _, effect := range r.SideEffects {
		if !effect.Succeeded() {
			failed = append(failed, effect)
		}
	}

	return failed
}

// DeployResult describes a successful deploy.
type DeployResult struct {
	WorkflowID     string     `json:"workflowId"`
	WorkflowURL    string     `json:"workflowUrl"`
	WebhookURL     string     `json:"webhookUrl"`
	TestWebhookURL string     `json:"testWebhookUrl"`
	FlowVersion    int        `json:"flowVersion"`
	Created        bool       `json:"created"`
	Activation     SideEffect `json:"activation"`
}

// TriggerResult describes an accepted trigger.
type TriggerResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Mode           string `json:"mode"`
	Background     bool   `json:"background"`
	ExecutionCount int    `json:"executionCount"`
	Data           any    `json:"data,omitempty"`
}

const (
	TriggerModeProduction = "production"
	TriggerModeTest       = "test"
)

// ExecutionStatusReport merges the remote workflow state with local telemetry.
// Error is set when the remote engine could not be queried.
type ExecutionStatusReport struct {
	CampaignID      string                   `json:"campaignId"`
	IsDeployed      bool                     `json:"isDeployed"`
	WorkflowID      string                   `json:"workflowId,omitempty"`
	WorkflowURL     string                   `json:"workflowUrl,omitempty"`
	WorkflowActive  bool                     `json:"workflowActive"`
	FlowVersion     int                      `json:"flowVersion"`
	ExecutionCount  int                      `json:"executionCount"`
	LastExecutedAt  *time.Time               `json:"lastExecutedAt,omitempty"`
	ExecutionStatus models.ExecutionStatus   `json:"executionStatus,omitempty"`
	Executions      []models.RemoteExecution `json:"executions"`
	Message         string                   `json:"message,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

// Lifecycle drives campaign status changes and the deploy and trigger of
// campaign flows on the remote engine. It takes no locks; concurrent
// operations on one campaign race with last write winning.
type Lifecycle struct {
	campaigns persistence.CampaignRepository
	remote    RemoteWorkflowClient
	compiler  *compiler.Compiler
	publisher eventbus.EventPublisher
	cache     *cache.Cache
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewLifecycle(
	p persistence.Persistence,
	remote RemoteWorkflowClient,
	flowCompiler *compiler.Compiler,
	publisher eventbus.EventPublisher,
	c *cache.Cache,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Lifecycle {
	return &Lifecycle{
		campaigns: p.CampaignRepository(),
		remote:    remote,
		compiler:  flowCompiler,
		publisher: publisher,
		cache:     c,
		logger:    logger.With("module", "lifecycle"),
		tracer:    tracer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UpdateStatus moves a campaign to a new status. A transition outside the
// table fails with *InvalidTransitionError and leaves the campaign untouched.
func (l *Lifecycle) UpdateStatus(ctx context.Context, id string, to models.CampaignStatus) (*TransitionResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, l.tracer, "lifecycle.update_status",
		attribute.String(otelhelper.CampaignIDKey, id),
		attribute.String(otelhelper.TransitionToKey, string(to)),
	)
	defer span.End()

	if !to.Valid() {
		err := fmt.Errorf("%w: %q", ErrInvalidStatus, to)
		otelhelper.SetError(span, err)

		return nil, err
	}

	campaign, err := l.campaigns.GetByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	from := campaign.Status
	span.SetAttributes(attribute.String(otelhelper.CampaignStatusKey, string(from)))

	if !CanTransition(from, to) {
		err := &InvalidTransitionError{From: from, To: to}
		otelhelper.SetError(span, err)

		return nil, err
	}

	campaign.Status = to
	if mirrored, ok := executionMirror[to]; ok {
		campaign.ExecutionStatus = mirrored
	}

	if err := l.campaigns.Save(ctx, campaign); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	result := &TransitionResult{
		Campaign:    campaign,
		From:        from,
		To:          to,
		SideEffects: make([]SideEffect, 0, 1),
	}

	if campaign.IsDeployed() {
		switch {
		case to == models.CampaignStatusRunning:
			result.SideEffects = append(result.SideEffects, l.activate(ctx, campaign))
		case from == models.CampaignStatusRunning:
			result.SideEffects = append(result.SideEffects, l.deactivate(ctx, campaign))
		}
	}

	invalidateCampaign(ctx, l.cache, campaign.ID, campaign.UserID)
	l.publish(ctx, campaign.ID, events.NewCampaignStatusChanged(campaign, from))

	l.logger.InfoContext(ctx, "campaign status changed",
		"campaign_id", campaign.ID,
		"from", from,
		"to", to,
	)
	otelhelper.SetOK(span, "status changed")

	return result, nil
}

// DeployFlow compiles the campaign flow and creates or updates its remote
// workflow. A remote id the engine no longer knows is replaced by a new one.
func (l *Lifecycle) DeployFlow(ctx context.Context, id string) (*DeployResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, l.tracer, "lifecycle.deploy_flow",
		attribute.String(otelhelper.CampaignIDKey, id),
	)
	defer span.End()

	campaign, err := l.campaigns.GetByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if !campaign.HasFlow() {
		otelhelper.SetError(span, ErrFlowDataRequired)

		return nil, ErrFlowDataRequired
	}

	validation := l.compiler.Validate(campaign.FlowData)
	if !validation.Valid {
		err := fmt.Errorf("%w: %w", ErrFlowInvalid, validation.Err())
		otelhelper.SetError(span, err)

		return nil, err
	}

	doc := l.compiler.Compile(campaign.FlowData, campaign.Name, campaign.ID)

	workflow, created, err := l.upsertWorkflow(ctx, campaign, doc)
	if err != nil {
		err = newRemoteError("deploy flow to n8n", err)
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.RemoteWorkflowIDKey, workflow.ID))

	now := l.now()
	campaign.RemoteWorkflowID = workflow.ID
	campaign.RemoteWorkflowURL = l.remote.WorkflowURL(workflow.ID)
	campaign.FlowVersion++
	campaign.FlowUpdatedAt = &now

	activation := l.activate(ctx, campaign)

	if err := l.campaigns.Save(ctx, campaign); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	path := compiler.WebhookPath(campaign.FlowData, campaign.ID)
	result := &DeployResult{
		WorkflowID:     workflow.ID,
		WorkflowURL:    campaign.RemoteWorkflowURL,
		WebhookURL:     l.remote.WebhookURL(path),
		TestWebhookURL: l.remote.TestWebhookURL(path),
		FlowVersion:    campaign.FlowVersion,
		Created:        created,
		Activation:     activation,
	}

	invalidateCampaign(ctx, l.cache, campaign.ID, campaign.UserID)
	l.publish(ctx, campaign.ID, events.NewCampaignDeployed(campaign, result.WebhookURL, activation.Succeeded()))

	l.logger.InfoContext(ctx, "campaign flow deployed",
		"campaign_id", campaign.ID,
		"workflow_id", workflow.ID,
		"flow_version", campaign.FlowVersion,
		"created", created,
	)
	otelhelper.SetOK(span, "flow deployed")

	return result, nil
}

func (l *Lifecycle) upsertWorkflow(ctx context.Context, campaign *models.Campaign, doc *models.WorkflowDocument) (*models.RemoteWorkflow, bool, error) {
	if campaign.IsDeployed() {
		existing, err := l.remote.GetWorkflow(ctx, campaign.RemoteWorkflowID)
		if err != nil {
			return nil, false, err
		}

		if existing != nil {
			updated, err := l.remote.UpdateWorkflow(ctx, campaign.RemoteWorkflowID, doc)

			return updated, false, err
		}

		l.logger.WarnContext(ctx, "remote workflow no longer exists, creating a new one",
			"campaign_id", campaign.ID,
			"stale_workflow_id", campaign.RemoteWorkflowID,
		)
	}

	created, err := l.remote.CreateWorkflow(ctx, doc)

	return created, true, err
}

// TriggerCampaign starts the deployed workflow through its webhook. The test
// webhook is tried when the production webhook fails. A webhook that does not
// answer in time counts as accepted.
func (l *Lifecycle) TriggerCampaign(ctx context.Context, id string, payload map[string]any) (*TriggerResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, l.tracer, "lifecycle.trigger_campaign",
		attribute.String(otelhelper.CampaignIDKey, id),
	)
	defer span.End()

	campaign, err := l.campaigns.GetByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if !campaign.IsDeployed() {
		otelhelper.SetError(span, ErrNotDeployed)

		return nil, ErrNotDeployed
	}

	path := compiler.WebhookPath(campaign.FlowData, campaign.ID)
	span.SetAttributes(attribute.String(otelhelper.WebhookPathKey, path))

	body := map[string]any{
		"campaignId":   campaign.ID,
		"campaignName": campaign.Name,
		"segmentId":    campaign.SegmentID,
		"triggeredAt":  l.now().Format(time.RFC3339),
	}
	maps.Copy(body, payload)

	mode := TriggerModeProduction

	response, err := l.remote.InvokeProductionWebhook(ctx, path, body)
	if err != nil {
		l.logger.WarnContext(ctx, "production webhook failed, trying test webhook",
			"campaign_id", campaign.ID,
			"error", err,
		)

		mode = TriggerModeTest

		response, err = l.remote.InvokeTestWebhook(ctx, path, body)
		if err != nil {
			err = newRemoteError("trigger campaign", err)
			otelhelper.SetError(span, err)

			return nil, err
		}
	}

	now := l.now()
	campaign.ExecutionCount++
	campaign.LastExecutedAt = &now
	campaign.ExecutionStatus = models.ExecutionStatusRunning

	if err := l.campaigns.Save(ctx, campaign); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	result := &TriggerResult{
		Success:        true,
		Message:        "Campaign triggered successfully",
		Mode:           mode,
		Background:     response.Accepted,
		ExecutionCount: campaign.ExecutionCount,
		Data:           response.Data,
	}

	if response.Accepted && response.Message != "" {
		result.Message = response.Message
	}

	invalidateCampaign(ctx, l.cache, campaign.ID, campaign.UserID)
	l.publish(ctx, campaign.ID, events.NewCampaignTriggered(campaign, result.Background))

	l.logger.InfoContext(ctx, "campaign triggered",
		"campaign_id", campaign.ID,
		"mode", mode,
		"background", result.Background,
		"execution_count", campaign.ExecutionCount,
	)
	otelhelper.SetOK(span, "campaign triggered")

	return result, nil
}

// ExecutionStatus reports the remote state of the campaign workflow. Remote
// failures are reported in the result; only a failed campaign lookup is
// returned as an error.
func (l *Lifecycle) ExecutionStatus(ctx context.Context, id string) (*ExecutionStatusReport, error) {
	ctx, span := otelhelper.StartSpan(ctx, l.tracer, "lifecycle.execution_status",
		attribute.String(otelhelper.CampaignIDKey, id),
	)
	defer span.End()

	campaign, err := l.campaigns.GetByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	report := &ExecutionStatusReport{
		CampaignID:      campaign.ID,
		IsDeployed:      campaign.IsDeployed(),
		WorkflowID:      campaign.RemoteWorkflowID,
		WorkflowURL:     campaign.RemoteWorkflowURL,
		FlowVersion:     campaign.FlowVersion,
		ExecutionCount:  campaign.ExecutionCount,
		LastExecutedAt:  campaign.LastExecutedAt,
		ExecutionStatus: campaign.ExecutionStatus,
		Executions:      make([]models.RemoteExecution, 0),
	}

	if !report.IsDeployed {
		report.Message = "Campaign flow not deployed"

		return report, nil
	}

	workflow, err := l.remote.GetWorkflow(ctx, campaign.RemoteWorkflowID)
	if err == nil && workflow == nil {
		err = fmt.Errorf("workflow %s: %w", campaign.RemoteWorkflowID, n8n.ErrNotFound)
	}

	if err != nil {
		l.degrade(ctx, report, err)
		otelhelper.SetError(span, err)

		return report, nil
	}

	report.WorkflowActive = workflow.Active

	executions, err := l.remote.ListExecutions(ctx, campaign.RemoteWorkflowID, n8n.ListExecutionsOptions{
		Limit: RecentExecutionsLimit,
	})
	if err != nil {
		l.degrade(ctx, report, err)
		otelhelper.SetError(span, err)

		return report, nil
	}

	report.Executions = executions

	return report, nil
}

func (l *Lifecycle) degrade(ctx context.Context, report *ExecutionStatusReport, err error) {
	l.logger.WarnContext(ctx, "failed to fetch remote execution status",
		"campaign_id", report.CampaignID,
		"error", err,
	)

	report.Error = err.Error()
	report.Executions = make([]models.RemoteExecution, 0)
}

// ValidateFlow checks the stored flow without deploying it.
func (l *Lifecycle) ValidateFlow(ctx context.Context, id string) (compiler.ValidationResult, error) {
	campaign, err := l.campaigns.GetByID(ctx, id)
	if err != nil {
		return compiler.ValidationResult{}, err
	}

	return l.compiler.Validate(campaign.FlowData), nil
}

// RemoteConnection reports whether the remote engine accepts our credentials.
func (l *Lifecycle) RemoteConnection(ctx context.Context) bool {
	return l.remote.TestConnection(ctx)
}

func (l *Lifecycle) activate(ctx context.Context, campaign *models.Campaign) SideEffect {
	effect := SideEffect{Action: SideEffectActivate, WorkflowID: campaign.RemoteWorkflowID}

	if err := l.remote.ActivateWorkflow(ctx, campaign.RemoteWorkflowID); err != nil {
		l.logger.WarnContext(ctx, "failed to activate remote workflow",
			"campaign_id", campaign.ID,
			"workflow_id", campaign.RemoteWorkflowID,
			"error", err,
		)

		effect.Err = err
	}

	return effect
}

func (l *Lifecycle) deactivate(ctx context.Context, campaign *models.Campaign) SideEffect {
	effect := SideEffect{Action: SideEffectDeactivate, WorkflowID: campaign.RemoteWorkflowID}

	if err := l.remote.DeactivateWorkflow(ctx, campaign.RemoteWorkflowID); err != nil {
		l.logger.WarnContext(ctx, "failed to deactivate remote workflow",
			"campaign_id", campaign.ID,
			"workflow_id", campaign.RemoteWorkflowID,
			"error", err,
		)

		effect.Err = err
	}

	return effect
}

func (l *Lifecycle) publish(ctx context.Context, key string, event eventbus.Event) {
	publish(ctx, l.publisher, l.logger, key, event)
}

// publish sends event and logs a failure. The state change it reports has
// already been persisted.
func publish(ctx context.Context, publisher eventbus.EventPublisher, logger *slog.Logger, key string, event eventbus.Event) {
	if err := publisher.Publish(ctx, key, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.GetType(),
			"key", key,
			"error", err,
		)
	}
}
