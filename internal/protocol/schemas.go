package protocol

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var payloadSchemas = map[string]*jsonschema.Schema{
	TypePlotOpen:   mustCompile("schemas/plot_open.schema.json"),
	TypePlotUpdate: mustCompile("schemas/plot_update.schema.json"),
	TypePlotSold:   mustCompile("schemas/plot_sold.schema.json"),
}

func mustCompile(path string) *jsonschema.Schema {
	b, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("protocol: read %s: %v", path, err))
	}
	s, err := jsonschema.CompileString(path, string(b))
	if err != nil {
		panic(fmt.Sprintf("protocol: compile %s: %v", path, err))
	}
	return s
}

// ValidatePayload checks a push payload against the schema for its message
// type. Types without a schema (ping, anything unknown) pass through.
func ValidatePayload(msgType string, data json.RawMessage) error {
	s, ok := payloadSchemas[msgType]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("payload does not match %s schema: %w", msgType, err)
	}
	return nil
}
