package models

import "time"

// n8n node type identifiers.
const (
	N8nTypeWebhook         = "n8n-nodes-base.webhook"
	N8nTypeGmail           = "n8n-nodes-base.gmail"
	N8nTypeWait            = "n8n-nodes-base.wait"
	N8nTypeIf              = "n8n-nodes-base.if"
	N8nTypeAwsS3           = "n8n-nodes-base.awsS3"
	N8nTypeSpreadsheetFile = "n8n-nodes-base.spreadsheetFile"
	N8nTypeHTTPRequest     = "n8n-nodes-base.httpRequest"
	N8nTypeCode            = "n8n-nodes-base.code"
	N8nTypeNoOp            = "n8n-nodes-base.noOp"
)

// ConnectionTypeMain is the only connection type emitted by the compiler.
const ConnectionTypeMain = "main"

// WorkflowDocument is the n8n workflow import document compiled from a flow graph.
type WorkflowDocument struct {
	Name        string                     `json:"name"`
	Nodes       []WorkflowNode             `json:"nodes"`
	Connections map[string]NodeConnections `json:"connections"`
	Settings    WorkflowSettings           `json:"settings"`
	StaticData  any                        `json:"staticData"`
}

// WorkflowNode is a single node of a compiled workflow document.
type WorkflowNode struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	TypeVersion int                      `json:"typeVersion"`
	Position    [2]float64               `json:"position"`
	Parameters  NodeParameters           `json:"parameters"`
	Credentials map[string]CredentialRef `json:"credentials,omitempty"`
}

// CredentialRef points at a credential stored inside n8n.
type CredentialRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NodeConnections lists the output slots of a node keyed by connection type.
type NodeConnections struct {
	Main []OutputSlot `json:"main"`
}

// OutputSlot is the ordered list of nodes fed by one output of a node.
type OutputSlot []ConnectionTarget

// ConnectionTarget addresses the input of a target node by name.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// WorkflowSettings is the execution policy attached to every compiled workflow.
type WorkflowSettings struct {
	SaveExecutionProgress bool `json:"saveExecutionProgress"`
	SaveManualExecutions  bool `json:"saveManualExecutions"`
	ExecutionTimeout      int  `json:"executionTimeout"`
}

// DefaultWorkflowSettings persists progress and manual runs and caps an execution at one hour.
func DefaultWorkflowSettings() WorkflowSettings {
	return WorkflowSettings{
		SaveExecutionProgress: true,
		SaveManualExecutions:  true,
		ExecutionTimeout:      3600,
	}
}

// RemoteWorkflow is what n8n answers after a workflow was created or updated.
type RemoteWorkflow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RemoteExecution is one run of a remote workflow.
type RemoteExecution struct {
	ID         string     `json:"id"`
	WorkflowID string     `json:"workflowId,omitempty"`
	Status     string     `json:"status"`
	Finished   bool       `json:"finished"`
	Mode       string     `json:"mode"`
	StartedAt  time.Time  `json:"startedAt"`
	StoppedAt  *time.Time `json:"stoppedAt,omitempty"`
}

// WebhookResult is the outcome of invoking a workflow's webhook. Accepted is set
// when the call timed out while the workflow kept running in the background.
type WebhookResult struct {
	Accepted bool   `json:"accepted,omitempty"`
	Status   string `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
}
