package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidFlowDocument is returned when raw flow data does not match the editor schema.
var ErrInvalidFlowDocument = errors.New("invalid flow document")

// flowGraphSchema describes the document stored by the flow editor.
const flowGraphSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["nodes", "edges"],
	"properties": {
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "type"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"type": {"type": "string", "minLength": 1},
					"position": {
						"type": "object",
						"properties": {
							"x": {"type": "number"},
							"y": {"type": "number"}
						}
					},
					"data": {
						"type": "object",
						"properties": {
							"label": {"type": "string"},
							"description": {"type": "string"},
							"properties": {"type": "object"}
						}
					}
				}
			}
		},
		"edges": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["source", "target"],
				"properties": {
					"id": {"type": "string"},
					"source": {"type": "string", "minLength": 1},
					"target": {"type": "string", "minLength": 1},
					"sourceHandle": {"type": ["string", "null"]},
					"targetHandle": {"type": ["string", "null"]}
				}
			}
		}
	}
}`

var flowSchemaLoader = gojsonschema.NewStringLoader(flowGraphSchema)

// ValidateFlowDocument checks raw flow editor JSON against the flow graph schema.
func ValidateFlowDocument(raw []byte) error {
	result, err := gojsonschema.Validate(flowSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlowDocument, err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidFlowDocument, strings.Join(messages, "; "))
	}

	return nil
}
