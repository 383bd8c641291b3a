// Package schemas embeds the JSON Schemas for oracle payloads.
package schemas

import _ "embed"

// UnderstandingSchemaJSON is the schema for the understanding stage payload.
//
//go:embed understanding.schema.json
var UnderstandingSchemaJSON string

// ScenariosSchemaJSON is the schema for the ideation stage payload.
//
//go:embed scenarios.schema.json
var ScenariosSchemaJSON string

// VerdictSchemaJSON is the schema for a single judge verdict.
//
//go:embed verdict.schema.json
var VerdictSchemaJSON string

// DecisionSchemaJSON is the schema for a simulated-user continuation decision.
//
//go:embed decision.schema.json
var DecisionSchemaJSON string
