// Package models defines the domain models for campaigns, their automation flows
// and the workflow documents compiled from them.
package models

// NodeType identifies the kind of step a flow node represents.
type NodeType string

const (
	NodeTypeTrigger        NodeType = "trigger"        // Inbound webhook entry point
	NodeTypeSendEmail      NodeType = "sendEmail"      // Gmail message
	NodeTypeWait           NodeType = "wait"           // Delay
	NodeTypeCondition      NodeType = "condition"      // Two-way branch
	NodeTypeGetSegmentData NodeType = "getSegmentData" // S3 download of the segment file
	NodeTypeParseCSV       NodeType = "parseCSV"       // Spreadsheet parsing
	NodeTypeHTTPRequest    NodeType = "httpRequest"    // Outbound HTTP call
	NodeTypeCode           NodeType = "code"           // Custom JavaScript
)

// FalseHandle is the source handle that marks the negative branch of a condition node.
const FalseHandle = "false"

// FlowGraph is the automation definition authored in the flow editor.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// IsEmpty reports whether the graph carries no nodes at all.
func (g *FlowGraph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Position is the editor coordinate of a node. It has no compile semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FlowNodeData holds the user-editable content of a node.
type FlowNodeData struct {
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// FlowNode is one step of a flow graph.
type FlowNode struct {
	ID       string       `json:"id"       validate:"required"`
	Type     NodeType     `json:"type"     validate:"required"`
	Position Position     `json:"position"`
	Data     FlowNodeData `json:"data"`
}

// IsTrigger reports whether the node is an entry point.
func (n FlowNode) IsTrigger() bool {
	return n.Type == NodeTypeTrigger
}

// DisplayName returns the label, falling back to the node type.
func (n FlowNode) DisplayName() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}

	return string(n.Type)
}

// FlowEdge is a directed connection between two nodes.
type FlowEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"                 validate:"required"`
	Target       string `json:"target"                 validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// IsNegativeBranch reports whether the edge leaves a condition through its false output.
func (e FlowEdge) IsNegativeBranch() bool {
	return e.SourceHandle == FalseHandle
}
