package models

import "encoding/json"

// NodeParameters is the parameter block of a compiled node. The set of
// implementations is closed: one per supported flow node type plus NoOpParameters.
type NodeParameters interface {
	// N8nType returns the n8n node type the parameters belong to.
	N8nType() string
	sealed()
}

// EmptyOptions marshals to an empty JSON object.
type EmptyOptions struct{}

type WebhookOptions struct {
	ResponseData string `json:"responseData"`
}

// WebhookParameters configures the inbound webhook that starts a campaign run.
type WebhookParameters struct {
	HTTPMethod   string         `json:"httpMethod"`
	Path         string         `json:"path"`
	ResponseMode string         `json:"responseMode"`
	Options      WebhookOptions `json:"options"`
}

func (WebhookParameters) N8nType() string { return N8nTypeWebhook }
func (WebhookParameters) sealed()         {}

type GmailOptions struct {
	AppendAttribution bool `json:"appendAttribution"`
}

// GmailParameters sends one email message.
type GmailParameters struct {
	Resource  string       `json:"resource"`
	Operation string       `json:"operation"`
	SendTo    string       `json:"sendTo"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Options   GmailOptions `json:"options"`
}

func (GmailParameters) N8nType() string { return N8nTypeGmail }
func (GmailParameters) sealed()         {}

// WaitParameters pauses the execution.
type WaitParameters struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

func (WaitParameters) N8nType() string { return N8nTypeWait }
func (WaitParameters) sealed()         {}

// ConditionOperator is the typed comparison of an IF condition.
type ConditionOperator struct {
	Type      string `json:"type"`
	Operation string `json:"operation"`
}

// IfCondition compares a left and a right value. RightValue is either a string or a bool.
type IfCondition struct {
	ID         string            `json:"id"`
	LeftValue  string            `json:"leftValue"`
	RightValue any               `json:"rightValue"`
	Operator   ConditionOperator `json:"operator"`
}

type IfConditionOptions struct {
	CaseSensitive  bool   `json:"caseSensitive"`
	LeftValue      string `json:"leftValue"`
	TypeValidation string `json:"typeValidation"`
}

type IfConditions struct {
	Options    IfConditionOptions `json:"options"`
	Conditions []IfCondition      `json:"conditions"`
	Combinator string             `json:"combinator"`
}

// IfParameters routes items to the true or the false output.
type IfParameters struct {
	Conditions IfConditions `json:"conditions"`
	Options    EmptyOptions `json:"options"`
}

func (IfParameters) N8nType() string { return N8nTypeIf }
func (IfParameters) sealed()         {}

// S3Parameters downloads the segment file.
type S3Parameters struct {
	Operation  string       `json:"operation"`
	BucketName string       `json:"bucketName"`
	FileKey    string       `json:"fileKey"`
	Options    EmptyOptions `json:"options"`
}

func (S3Parameters) N8nType() string { return N8nTypeAwsS3 }
func (S3Parameters) sealed()         {}

type SpreadsheetOptions struct {
	Delimiter string `json:"delimiter"`
	HeaderRow bool   `json:"headerRow"`
}

// SpreadsheetParameters parses a CSV binary into items.
type SpreadsheetParameters struct {
	Operation string             `json:"operation"`
	Options   SpreadsheetOptions `json:"options"`
}

func (SpreadsheetParameters) N8nType() string { return N8nTypeSpreadsheetFile }
func (SpreadsheetParameters) sealed()         {}

type HeaderParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// HeaderParameters marshals to {} when no header was configured. A configured
// but empty header object keeps an empty parameters list.
type HeaderParameters struct {
	Parameters []HeaderParameter `json:"parameters"`
}

func (h HeaderParameters) MarshalJSON() ([]byte, error) {
	if h.Parameters == nil {
		return []byte("{}"), nil
	}

	type plain HeaderParameters

	return json.Marshal(plain(h))
}

// HTTPRequestParameters performs an outbound HTTP call.
type HTTPRequestParameters struct {
	Method           string           `json:"method"`
	URL              string           `json:"url"`
	SendHeaders      bool             `json:"sendHeaders"`
	HeaderParameters HeaderParameters `json:"headerParameters"`
	SendBody         bool             `json:"sendBody"`
	SpecifyBody      string           `json:"specifyBody"`
	JSONBody         string           `json:"jsonBody"`
	Options          EmptyOptions     `json:"options"`
}

func (HTTPRequestParameters) N8nType() string { return N8nTypeHTTPRequest }
func (HTTPRequestParameters) sealed()         {}

// CodeParameters runs custom JavaScript over the input items.
type CodeParameters struct {
	Language string `json:"language"`
	JSCode   string `json:"jsCode"`
}

func (CodeParameters) N8nType() string { return N8nTypeCode }
func (CodeParameters) sealed()         {}

// NoOpParameters is used for node types the compiler does not know.
type NoOpParameters struct{}

func (NoOpParameters) N8nType() string { return N8nTypeNoOp }
func (NoOpParameters) sealed()         {}
