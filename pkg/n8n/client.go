// Package n8n is a client for the n8n REST API and workflow webhooks.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	apiKeyHeader = "X-N8N-API-KEY"

	acceptedMessage = "Workflow triggered (running in background)"
	acceptedStatus  = "accepted"
)

// ListExecutionsOptions filters ListExecutions. Zero values are not sent.
type ListExecutionsOptions struct {
	Limit  int
	Status string
}

// Client talks to one n8n instance. Every call is a single request bounded by
// Config.Timeout; nothing is retried.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClient creates a client for the configured instance.
func NewClient(config Config, logger *slog.Logger, tracer trace.Tracer) *Client {
	config = config.withDefaults()

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("module", "n8n", "api_url", config.APIURL),
		tracer:     tracer,
	}
}

// CreateWorkflow creates a new, inactive workflow.
func (c *Client) CreateWorkflow(ctx context.Context, doc *models.WorkflowDocument) (*models.RemoteWorkflow, error) {
	var workflow models.RemoteWorkflow
	if err := c.do(ctx, "createWorkflow", http.MethodPost, "/workflows", doc, &workflow); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "Created workflow", "workflow_id", workflow.ID, "name", workflow.Name)

	return &workflow, nil
}

// UpdateWorkflow replaces the definition of an existing workflow.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, doc *models.WorkflowDocument) (*models.RemoteWorkflow, error) {
	var workflow models.RemoteWorkflow
	if err := c.do(ctx, "updateWorkflow", http.MethodPut, "/workflows/"+url.PathEscape(id), doc, &workflow); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "Updated workflow", "workflow_id", workflow.ID)

	return &workflow, nil
}

// GetWorkflow fetches a workflow. It returns nil and no error when n8n answers 404.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.RemoteWorkflow, error) {
	var workflow models.RemoteWorkflow

	err := c.do(ctx, "getWorkflow", http.MethodGet, "/workflows/"+url.PathEscape(id), nil, &workflow)
	if IsNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// DeleteWorkflow removes a workflow.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	if err := c.do(ctx, "deleteWorkflow", http.MethodDelete, "/workflows/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Deleted workflow", "workflow_id", id)

	return nil
}

// ActivateWorkflow turns the workflow's production webhook on.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) error {
	if err := c.do(ctx, "activateWorkflow", http.MethodPost, "/workflows/"+url.PathEscape(id)+"/activate", nil, nil); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Activated workflow", "workflow_id", id)

	return nil
}

// DeactivateWorkflow turns the workflow's production webhook off.
func (c *Client) DeactivateWorkflow(ctx context.Context, id string) error {
	if err := c.do(ctx, "deactivateWorkflow", http.MethodPost, "/workflows/"+url.PathEscape(id)+"/deactivate", nil, nil); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Deactivated workflow", "workflow_id", id)

	return nil
}

// ListExecutions returns the most recent executions of a workflow, newest first.
func (c *Client) ListExecutions(ctx context.Context, workflowID string, opts ListExecutionsOptions) ([]models.RemoteExecution, error) {
	query := url.Values{}
	query.Set("workflowId", workflowID)

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var page struct {
		Data       []models.RemoteExecution `json:"data"`
		NextCursor *string                  `json:"nextCursor"`
	}

	if err := c.do(ctx, "listExecutions", http.MethodGet, "/executions?"+query.Encode(), nil, &page); err != nil {
		return nil, err
	}

	if page.Data == nil {
		return []models.RemoteExecution{}, nil
	}

	return page.Data, nil
}

// TestConnection reports whether the API answers with the configured key.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.do(ctx, "testConnection", http.MethodGet, "/workflows?limit=1", nil, nil); err != nil {
		c.logger.WarnContext(ctx, "n8n connection test failed", "error", err)

		return false
	}

	return true
}

// InvokeProductionWebhook posts payload to the active workflow's webhook. A
// timeout counts as accepted: the workflow keeps running in the background.
func (c *Client) InvokeProductionWebhook(ctx context.Context, path string, payload map[string]any) (*models.WebhookResult, error) {
	return c.invokeWebhook(ctx, "invokeProductionWebhook", c.WebhookURL(path), payload)
}

// InvokeTestWebhook posts payload to the editor's test listener. Failures other
// than a timeout are reported as ErrWebhookNotAvailable.
func (c *Client) InvokeTestWebhook(ctx context.Context, path string, payload map[string]any) (*models.WebhookResult, error) {
	result, err := c.invokeWebhook(ctx, "invokeTestWebhook", c.TestWebhookURL(path), payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWebhookNotAvailable, err)
	}

	return result, nil
}

// WebhookURL is the production URL of a webhook path.
func (c *Client) WebhookURL(path string) string {
	return c.config.WebhookBaseURL + "/" + path
}

// TestWebhookURL is the editor test-listener URL of a webhook path.
func (c *Client) TestWebhookURL(path string) string {
	return c.config.WebhookBaseURL + "-test/" + path
}

// WorkflowURL is the editor URL of a workflow.
func (c *Client) WorkflowURL(id string) string {
	return c.config.EditorURL + "/workflow/" + id
}

func (c *Client) invokeWebhook(ctx context.Context, op, target string, payload map[string]any) (*models.WebhookResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "n8n."+op,
		attribute.String(otelhelper.RemoteOperationKey, op),
		attribute.String("url.full", target),
	)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.InfoContext(ctx, "Webhook call timed out, workflow keeps running", "url", target)
			otelhelper.SetOK(span, acceptedStatus)

			return &models.WebhookResult{Accepted: true, Status: acceptedStatus, Message: acceptedMessage}, nil
		}

		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("%w during %s: %w", ErrUnavailable, op, err)
	}
	defer closeBody(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		err := classify(op, resp.StatusCode, errorMessage(data))
		otelhelper.SetError(span, err)

		return nil, err
	}

	c.logger.InfoContext(ctx, "Webhook invoked", "url", target, "status_code", resp.StatusCode)

	return &models.WebhookResult{Data: decodeLoose(data)}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "n8n."+op,
		attribute.String(otelhelper.RemoteOperationKey, op),
		attribute.String("http.request.method", method),
	)
	defer span.End()

	var body io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			otelhelper.SetError(span, err)

			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.APIURL+path, body)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(apiKeyHeader, c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		otelhelper.SetError(span, err)
		c.logger.ErrorContext(ctx, "n8n request failed", "operation", op, "error", err)

		return fmt.Errorf("%w during %s: %w", ErrUnavailable, op, err)
	}
	defer closeBody(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		err := classify(op, resp.StatusCode, errorMessage(data))
		otelhelper.SetError(span, err)

		if !IsNotFound(err) {
			c.logger.ErrorContext(ctx, "n8n API error", "operation", op, "status_code", resp.StatusCode, "error", err)
		}

		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}

	return nil
}

// errorMessage extracts n8n's {"message": "..."} error text.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}

	return string(bytes.TrimSpace(data))
}

func decodeLoose(data []byte) any {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}

	return decoded
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func closeBody(body io.Closer) {
	_ = body.Close()
}
