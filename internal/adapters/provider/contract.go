package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema is the part of the provider answer the gateway relies on.
const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["resultado"],
  "properties": {
    "resultado": {"type": "string", "minLength": 1}
  }
}`

type payloadContract struct {
	schema *santhosh.Schema
}

func newPayloadContract() (*payloadContract, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("provider.json", strings.NewReader(payloadSchema)); err != nil {
		return nil, fmt.Errorf("add provider schema: %w", err)
	}
	schema, err := compiler.Compile("provider.json")
	if err != nil {
		return nil, fmt.Errorf("compile provider schema: %w", err)
	}
	return &payloadContract{schema: schema}, nil
}

// result validates body and returns its report text.
func (c *payloadContract) result(body []byte) (string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	if err := c.schema.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return "", fmt.Errorf("payload violates contract: %s", strings.Join(collectCauses(ve), "; "))
		}
		return "", fmt.Errorf("validate payload: %w", err)
	}
	return v.(map[string]any)["resultado"].(string), nil
}

func collectCauses(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectCauses(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, ve.Error())
	}
	return msgs
}
