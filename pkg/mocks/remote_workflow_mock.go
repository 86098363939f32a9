package mocks

import (
	"context"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/n8n"
	"github.com/stretchr/testify/mock"
)

// MockRemoteWorkflowClient is a mock implementation of services.RemoteWorkflowClient.
// The URL builders are not mocked; they use the n8n defaults.
type MockRemoteWorkflowClient struct {
	mock.Mock
}

func (m *MockRemoteWorkflowClient) CreateWorkflow(ctx context.Context, doc *models.WorkflowDocument) (*models.RemoteWorkflow, error) {
	args := m.Called(ctx, doc)

	return remoteWorkflow(args)
}

func (m *MockRemoteWorkflowClient) UpdateWorkflow(ctx context.Context, id string, doc *models.WorkflowDocument) (*models.RemoteWorkflow, error) {
	args := m.Called(ctx, id, doc)

	return remoteWorkflow(args)
}

func (m *MockRemoteWorkflowClient) GetWorkflow(ctx context.Context, id string) (*models.RemoteWorkflow, error) {
	args := m.Called(ctx, id)

	return remoteWorkflow(args)
}

func (m *MockRemoteWorkflowClient) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRemoteWorkflowClient) ActivateWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRemoteWorkflowClient) DeactivateWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRemoteWorkflowClient) InvokeProductionWebhook(ctx context.Context, path string, payload map[string]any) (*models.WebhookResult, error) {
	args := m.Called(ctx, path, payload)

	return webhookResult(args)
}

func (m *MockRemoteWorkflowClient) InvokeTestWebhook(ctx context.Context, path string, payload map[string]any) (*models.WebhookResult, error) {
	args := m.Called(ctx, path, payload)

	return webhookResult(args)
}

func (m *MockRemoteWorkflowClient) ListExecutions(ctx context.Context, workflowID string, opts n8n.ListExecutionsOptions) ([]models.RemoteExecution, error) {
	args := m.Called(ctx, workflowID, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.RemoteExecution), args.Error(1)
}

func (m *MockRemoteWorkflowClient) TestConnection(ctx context.Context) bool {
	args := m.Called(ctx)

	return args.Bool(0)
}

func (m *MockRemoteWorkflowClient) WebhookURL(path string) string {
	return n8n.DefaultWebhookBaseURL + "/" + path
}

func (m *MockRemoteWorkflowClient) TestWebhookURL(path string) string {
	return n8n.DefaultWebhookBaseURL + "-test/" + path
}

func (m *MockRemoteWorkflowClient) WorkflowURL(id string) string {
	return "http://localhost:5678/workflow/" + id
}

func remoteWorkflow(args mock.Arguments) (*models.RemoteWorkflow, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.RemoteWorkflow), args.Error(1)
}

func webhookResult(args mock.Arguments) (*models.WebhookResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WebhookResult), args.Error(1)
}
