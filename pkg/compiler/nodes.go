package compiler

import (
	"github.com/dukex/campaigner/pkg/models"
	"github.com/google/uuid"
)

const (
	gmailCredentialKey  = "gmailOAuth2"
	gmailCredentialName = "Gmail account"

	defaultCode = `// Access input data
const items = $input.all();

// Return processed items
return items;`
)

var typeVersions = map[string]int{
	models.N8nTypeWebhook:         2,
	models.N8nTypeGmail:           2,
	models.N8nTypeWait:            1,
	models.N8nTypeIf:              2,
	models.N8nTypeAwsS3:           1,
	models.N8nTypeSpreadsheetFile: 4,
	models.N8nTypeHTTPRequest:     4,
	models.N8nTypeCode:            2,
}

// TypeVersion returns the n8n node version the compiler targets for an n8n type.
func TypeVersion(n8nType string) int {
	if version, ok := typeVersions[n8nType]; ok {
		return version
	}

	return 1
}

var (
	stringOperators = map[string]models.ConditionOperator{
		"equals":      {Type: "string", Operation: "equals"},
		"notEquals":   {Type: "string", Operation: "notEquals"},
		"contains":    {Type: "string", Operation: "contains"},
		"greaterThan": {Type: "number", Operation: "gt"},
		"lessThan":    {Type: "number", Operation: "lt"},
	}

	booleanOperators = map[string]models.ConditionOperator{
		"equals":    {Type: "boolean", Operation: "equals"},
		"notEquals": {Type: "boolean", Operation: "notEquals"},
	}
)

func conditionOperator(operator string, boolean bool) models.ConditionOperator {
	if boolean {
		if op, ok := booleanOperators[operator]; ok {
			return op
		}

		return models.ConditionOperator{Type: "boolean", Operation: "equals"}
	}

	if op, ok := stringOperators[operator]; ok {
		return op
	}

	return models.ConditionOperator{Type: "string", Operation: "equals"}
}

// NodeCompiler translates flow nodes into n8n workflow nodes.
type NodeCompiler struct {
	gmailCredentialID string
	newID             func() string
}

// NewNodeCompiler creates a node compiler. Email nodes get Gmail credentials
// attached only when cfg.GmailCredentialID is set.
func NewNodeCompiler(cfg Config) *NodeCompiler {
	return &NodeCompiler{
		gmailCredentialID: cfg.GmailCredentialID,
		newID:             uuid.NewString,
	}
}

// CompileNode translates one flow node. names must come from ResolveNames over
// the same graph.
func (c *NodeCompiler) CompileNode(node models.FlowNode, campaignID string, names map[string]string) models.WorkflowNode {
	name, ok := names[node.ID]
	if !ok || name == "" {
		name = baseName(node)
	}

	params := c.Parameters(node, campaignID)

	compiled := models.WorkflowNode{
		ID:          node.ID,
		Name:        name,
		Type:        params.N8nType(),
		TypeVersion: TypeVersion(params.N8nType()),
		Position:    [2]float64{node.Position.X, node.Position.Y},
		Parameters:  params,
	}

	if node.Type == models.NodeTypeSendEmail && c.gmailCredentialID != "" {
		compiled.Credentials = map[string]models.CredentialRef{
			gmailCredentialKey: {ID: c.gmailCredentialID, Name: gmailCredentialName},
		}
	}

	return compiled
}

// Parameters builds the typed parameter block for a node.
func (c *NodeCompiler) Parameters(node models.FlowNode, campaignID string) models.NodeParameters {
	p := propsOf(node)

	switch node.Type {
	case models.NodeTypeTrigger:
		return models.WebhookParameters{
			HTTPMethod: p.string("httpMethod", "POST"),
			Path:       p.string("webhookPath", DefaultWebhookPath(campaignID)),
			// respond as soon as the call is received, not when the run ends
			ResponseMode: "onReceived",
			Options:      models.WebhookOptions{ResponseData: "allEntries"},
		}

	case models.NodeTypeSendEmail:
		return models.GmailParameters{
			Resource:  "message",
			Operation: "send",
			SendTo:    ConvertVariables(p.string("to", "")),
			Subject:   ConvertVariables(p.string("subject", "")),
			Message:   ConvertVariables(p.string("body", "")),
			Options:   models.GmailOptions{AppendAttribution: false},
		}

	case models.NodeTypeWait:
		return models.WaitParameters{
			Amount: p.int("amount", 1),
			Unit:   p.string("unit", "minutes"),
		}

	case models.NodeTypeCondition:
		return c.conditionParameters(p)

	case models.NodeTypeGetSegmentData:
		return models.S3Parameters{
			Operation:  "download",
			BucketName: p.string("bucket", ""),
			FileKey:    p.string("key", ""),
		}

	case models.NodeTypeParseCSV:
		return models.SpreadsheetParameters{
			Operation: "fromFile",
			Options: models.SpreadsheetOptions{
				Delimiter: p.string("delimiter", ","),
				HeaderRow: p.notFalse("hasHeader"),
			},
		}

	case models.NodeTypeHTTPRequest:
		return models.HTTPRequestParameters{
			Method:           p.string("method", "GET"),
			URL:              ConvertVariables(p.string("url", "")),
			SendHeaders:      p.present("headers"),
			HeaderParameters: headerParameters(p["headers"]),
			SendBody:         p.present("body"),
			SpecifyBody:      "json",
			JSONBody:         ConvertVariables(p.string("body", "{}")),
		}

	case models.NodeTypeCode:
		return models.CodeParameters{
			Language: "javaScript",
			JSCode:   p.string("jsCode", defaultCode),
		}

	default:
		return models.NoOpParameters{}
	}
}

func (c *NodeCompiler) conditionParameters(p props) models.IfParameters {
	var (
		boolean    bool
		rightValue any
	)

	switch value := p["value"].(type) {
	case bool:
		boolean, rightValue = true, value
	case string:
		if value == "true" || value == "false" {
			boolean, rightValue = true, value == "true"
		}
	}

	if !boolean {
		rightValue = ConvertVariables(p.string("value", ""))
	}

	return models.IfParameters{
		Conditions: models.IfConditions{
			Options: models.IfConditionOptions{
				CaseSensitive:  true,
				LeftValue:      "",
				TypeValidation: "loose",
			},
			Conditions: []models.IfCondition{
				{
					ID:         c.newID(),
					LeftValue:  ConvertVariables(p.string("field", "")),
					RightValue: rightValue,
					Operator:   conditionOperator(p.string("operator", ""), boolean),
				},
			},
			Combinator: "and",
		},
	}
}
