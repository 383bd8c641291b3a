// Package validation checks oracle JSON payloads against embedded schemas.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mangleddev/behaviorlab/schemas"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	understandingSchema *jsonschema.Schema
	scenariosSchema     *jsonschema.Schema
	verdictSchema       *jsonschema.Schema
	decisionSchema      *jsonschema.Schema
)

func init() {
	understandingSchema = mustCompileSchema(schemas.UnderstandingSchemaJSON, "understanding.schema.json")
	scenariosSchema = mustCompileSchema(schemas.ScenariosSchemaJSON, "scenarios.schema.json")
	verdictSchema = mustCompileSchema(schemas.VerdictSchemaJSON, "verdict.schema.json")
	decisionSchema = mustCompileSchema(schemas.DecisionSchemaJSON, "decision.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateUnderstanding validates an understanding payload.
func ValidateUnderstanding(data json.RawMessage) []string {
	return validateJSONBytes(understandingSchema, data)
}

// ValidateScenarios validates an ideation payload.
func ValidateScenarios(data json.RawMessage) []string {
	return validateJSONBytes(scenariosSchema, data)
}

// ValidateVerdict validates a judge verdict payload.
func ValidateVerdict(data json.RawMessage) []string {
	return validateJSONBytes(verdictSchema, data)
}

// ValidateDecision validates a simulated-user decision payload.
func ValidateDecision(data json.RawMessage) []string {
	return validateJSONBytes(decisionSchema, data)
}

func validateJSONBytes(schema *jsonschema.Schema, data json.RawMessage) []string {
	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	return validateAgainstSchema(schema, instance)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(cause, errs)
	}
}
