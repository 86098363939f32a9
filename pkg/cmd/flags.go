package cmd

import (
	"strings"

	"github.com/dukex/campaigner/pkg/compiler"
	"github.com/dukex/campaigner/pkg/n8n"
	cli "github.com/urfave/cli/v3"
)

// RuntimeFlags are the flags shared by every campaigner command.
func RuntimeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Database connection URL for persistence (postgres://... or file://path)",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Redis URL for the read cache; in-memory cache when empty",
			Sources: cli.EnvVars("REDIS_URL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   EventBusGoChannel,
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma separated Kafka broker addresses",
			Value:   "localhost:9092",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.StringFlag{
			Name:    "n8n-api-url",
			Usage:   "n8n REST API URL",
			Value:   n8n.DefaultAPIURL,
			Sources: cli.EnvVars("N8N_API_URL"),
		},
		&cli.StringFlag{
			Name:    "n8n-api-key",
			Usage:   "n8n API key",
			Sources: cli.EnvVars("N8N_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "n8n-webhook-base-url",
			Usage:   "n8n production webhook base URL",
			Value:   n8n.DefaultWebhookBaseURL,
			Sources: cli.EnvVars("N8N_WEBHOOK_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "n8n-editor-url",
			Usage:   "n8n editor URL used in workflow links (defaults to the API URL without /api/v1)",
			Sources: cli.EnvVars("N8N_EDITOR_URL"),
		},
		&cli.StringFlag{
			Name:    "n8n-gmail-credential-id",
			Usage:   "Id of the Gmail OAuth2 credential referenced by compiled email nodes",
			Sources: cli.EnvVars("N8N_GMAIL_CREDENTIAL_ID"),
		},
		&cli.BoolFlag{
			Name:    "tracing",
			Usage:   "Export OpenTelemetry traces over OTLP/HTTP",
			Sources: cli.EnvVars("TRACING_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
	}
}

func N8nConfig(command *cli.Command) n8n.Config {
	return n8n.Config{
		APIURL:         command.String("n8n-api-url"),
		APIKey:         command.String("n8n-api-key"),
		WebhookBaseURL: command.String("n8n-webhook-base-url"),
		EditorURL:      command.String("n8n-editor-url"),
	}
}

func CompilerConfig(command *cli.Command) compiler.Config {
	return compiler.Config{
		GmailCredentialID: command.String("n8n-gmail-credential-id"),
	}
}

// Brokers splits a comma separated broker list, dropping blanks.
func Brokers(raw string) []string {
	brokers := make([]string, 0)

	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}
