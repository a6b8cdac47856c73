// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package skills

// InputSchema renders the parameter list as a JSON Schema object, the shape
// tool-calling LLMs and MCP clients expect.
func InputSchema(meta Metadata) map[string]any {
	properties := make(map[string]any, len(meta.Parameters))
	required := make([]string, 0, len(meta.Parameters))
	for _, p := range meta.Parameters {
		prop := map[string]any{
			"description": p.Description,
		}
		if t := jsonSchemaType(p.Type); t != "" {
			prop["type"] = t
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required && p.Default == nil {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func jsonSchemaType(t ParameterType) string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeList:
		return "array"
	case TypeMapping:
		return "object"
	default:
		return ""
	}
}
