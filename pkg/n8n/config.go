package n8n

import (
	"strings"
	"time"
)

const (
	DefaultAPIURL         = "http://localhost:5678/api/v1"
	DefaultWebhookBaseURL = "http://localhost:5678/webhook"
	DefaultTimeout        = 30 * time.Second

	apiPathSuffix = "/api/v1"
)

// Config locates an n8n instance.
type Config struct {
	// APIURL is the REST API root, e.g. http://localhost:5678/api/v1.
	APIURL string
	APIKey string
	// WebhookBaseURL is the production webhook root. The test webhook root is
	// the same URL with "-test" appended.
	WebhookBaseURL string
	// EditorURL is where the n8n editor UI is served. Defaults to APIURL
	// without its /api/v1 suffix.
	EditorURL string
	Timeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}

	c.APIURL = strings.TrimRight(c.APIURL, "/")

	if c.WebhookBaseURL == "" {
		c.WebhookBaseURL = DefaultWebhookBaseURL
	}

	c.WebhookBaseURL = strings.TrimRight(c.WebhookBaseURL, "/")

	if c.EditorURL == "" {
		c.EditorURL = strings.TrimSuffix(c.APIURL, apiPathSuffix)
	}

	c.EditorURL = strings.TrimRight(c.EditorURL, "/")

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	return c
}
