package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"genui/internal/registry"
)

const outputFormat = `Respond with a single JSON array of update objects, streamed in the order
the UI should build up. Each element is exactly one of:
  {"view": [{"key": "...", "type": "...", "props": {...}, "children": ["..."]}]}
  {"data": {...}}
Node keys are unique across the whole view. Children reference other nodes
by key; emit data before the nodes that bind to it when possible. Props may
reference data values with exact placeholder strings like "{user.name}".
Action props use {"name": "...", "params": {...}}.`

// BuildPrompt renders the component and action catalogs around the user
// request. The catalogs are the model's entire vocabulary: it may only emit
// node types and action names listed here.
func BuildPrompt(reg *registry.Registry, userPrompt string) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", "Generate a UI specification for the request below using only the listed components and actions.")
	writeSection(&buf, "REQUEST", strings.TrimSpace(userPrompt))
	writeSection(&buf, "COMPONENTS", formatComponents(reg.Components()))
	writeSection(&buf, "ACTIONS", formatActions(reg.Actions()))
	writeSection(&buf, "OUTPUT_FORMAT", outputFormat)
	return strings.TrimSpace(buf.String()) + "\n"
}

func writeSection(buf *bytes.Buffer, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", name, body)
}

func formatComponents(defs []registry.ComponentDef) string {
	if len(defs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, def := range defs {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
		if len(def.Params) > 0 {
			fmt.Fprintf(&b, "  props schema: %s\n", compactJSON(def.Params))
		}
		if len(def.ContentProps) > 0 {
			fmt.Fprintf(&b, "  child-key props: %s\n", strings.Join(def.ContentProps, ", "))
		}
	}
	return b.String()
}

func formatActions(defs []registry.ActionDef) string {
	if len(defs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, def := range defs {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
		if len(def.Params) > 0 {
			fmt.Fprintf(&b, "  params schema: %s\n", compactJSON(def.Params))
		}
		if len(def.Returns) > 0 {
			fmt.Fprintf(&b, "  returns schema: %s\n", compactJSON(def.Returns))
		}
	}
	return b.String()
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
