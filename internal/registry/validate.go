package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateActionParams checks resolved params against the action's declared
// schema. An action with no params schema accepts anything.
func (r *Registry) ValidateActionParams(def ActionDef, params map[string]any) error {
	return validateAgainst(def.Params, params, fmt.Sprintf("action %q params", def.Name))
}

// ValidateActionReturns checks a handler result against the action's
// declared returns schema, when one exists.
func (r *Registry) ValidateActionReturns(def ActionDef, result map[string]any) error {
	return validateAgainst(def.Returns, result, fmt.Sprintf("action %q returns", def.Name))
}

func validateAgainst(schema map[string]any, value map[string]any, what string) error {
	if len(schema) == 0 {
		return nil
	}
	if value == nil {
		value = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(value),
	)
	if err != nil {
		return fmt.Errorf("registry: %s schema: %w", what, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("registry: %s invalid: %s", what, strings.Join(msgs, "; "))
}
