package services

import (
	"context"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/n8n"
)

// RemoteWorkflowClient is the remote workflow engine as seen by the lifecycle.
// *n8n.Client implements it.
type RemoteWorkflowClient interface {
	CreateWorkflow(ctx context.Context, doc *models.WorkflowDocument) (*models.RemoteWorkflow, error)
	UpdateWorkflow(ctx context.Context, id string, doc *models.WorkflowDocument) (*models.RemoteWorkflow, error)
	// GetWorkflow returns nil, nil when the workflow does not exist.
	GetWorkflow(ctx context.Context, id string) (*models.RemoteWorkflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	ActivateWorkflow(ctx context.Context, id string) error
	DeactivateWorkflow(ctx context.Context, id string) error

	InvokeProductionWebhook(ctx context.Context, path string, payload map[string]any) (*models.WebhookResult, error)
	InvokeTestWebhook(ctx context.Context, path string, payload map[string]any) (*models.WebhookResult, error)

	ListExecutions(ctx context.Context, workflowID string, opts n8n.ListExecutionsOptions) ([]models.RemoteExecution, error)
	TestConnection(ctx context.Context) bool

	WebhookURL(path string) string
	TestWebhookURL(path string) string
	WorkflowURL(id string) string
}

var _ RemoteWorkflowClient = (*n8n.Client)(nil)
