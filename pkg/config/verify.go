package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema checks enum and range constraints of the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema map[string]any
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	defs, _ := schema["$defs"].(map[string]any)
	return verifyNode(schema, configMap, defs, "")
}

// verifyNode walks schema and value together, following local $ref links
func verifyNode(node map[string]any, value any, defs map[string]any, path string) error {
	if ref, ok := node["$ref"].(string); ok {
		target, found := defs[strings.TrimPrefix(ref, "#/$defs/")].(map[string]any)
		if !found {
			return fmt.Errorf("%s: unresolved schema reference %s", path, ref)
		}
		return verifyNode(target, value, defs, path)
	}

	if enum, ok := node["enum"].([]any); ok && !slices.Contains(enum, value) {
		return fmt.Errorf("%s: value %v is not one of %v", path, value, enum)
	}

	if num, ok := value.(float64); ok {
		if minVal, ok := node["minimum"].(float64); ok && num < minVal {
			return fmt.Errorf("%s: value %v is less than minimum %v", path, num, minVal)
		}
		if maxVal, ok := node["maximum"].(float64); ok && num > maxVal {
			return fmt.Errorf("%s: value %v is greater than maximum %v", path, num, maxVal)
		}
	}

	props, _ := node["properties"].(map[string]any)
	obj, isObj := value.(map[string]any)
	if !isObj {
		return nil
	}
	for name, p := range props {
		sub, ok := p.(map[string]any)
		if !ok {
			continue
		}
		v, present := obj[name]
		if !present {
			continue
		}
		if err := verifyNode(sub, v, defs, strings.TrimPrefix(path+"."+name, ".")); err != nil {
			return err
		}
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
