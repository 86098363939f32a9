// Package compiler translates flow editor graphs into n8n workflow documents.
package compiler

import "github.com/dukex/campaigner/pkg/models"

// WorkflowNamePrefix prefixes every compiled workflow name.
const WorkflowNamePrefix = "Campaign: "

// Config holds the n8n-side identifiers the compiler may reference.
type Config struct {
	// GmailCredentialID is the id of the Gmail OAuth2 credential stored in n8n.
	GmailCredentialID string
}

// Compiler validates and compiles flow graphs. It holds no per-call state and
// is safe for concurrent use.
type Compiler struct {
	nodes *NodeCompiler
}

// New creates a compiler.
func New(cfg Config) *Compiler {
	return &Compiler{nodes: NewNodeCompiler(cfg)}
}

// Validate checks the graph. Callers must abort when the result is not valid;
// Compile does not validate again.
func (c *Compiler) Validate(graph *models.FlowGraph) ValidationResult {
	return Validate(graph)
}

// Compile produces the workflow document for a campaign's flow graph.
func (c *Compiler) Compile(graph *models.FlowGraph, campaignName, campaignID string) *models.WorkflowDocument {
	if graph == nil {
		graph = &models.FlowGraph{}
	}

	// node and connection compilation must share one name map
	names := ResolveNames(graph.Nodes)

	nodes := make([]models.WorkflowNode, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nodes = append(nodes, c.nodes.CompileNode(node, campaignID, names))
	}

	return &models.WorkflowDocument{
		Name:        WorkflowNamePrefix + campaignName,
		Nodes:       nodes,
		Connections: CompileConnections(graph.Nodes, graph.Edges, names),
		Settings:    models.DefaultWorkflowSettings(),
		StaticData:  nil,
	}
}

// DefaultWebhookPath is the webhook path used when a trigger node sets none.
func DefaultWebhookPath(campaignID string) string {
	return "campaign-" + campaignID
}

// WebhookPath returns the path of the graph's first trigger node.
func WebhookPath(graph *models.FlowGraph, campaignID string) string {
	if graph != nil {
		for _, node := range graph.Nodes {
			if !node.IsTrigger() {
				continue
			}

			return propsOf(node).string("webhookPath", DefaultWebhookPath(campaignID))
		}
	}

	return DefaultWebhookPath(campaignID)
}
