// Package schemas embeds the JSON Schemas for payloads exchanged with the upstream API.
package schemas

import "embed"

// Schema file names
const (
	ParticipantCreate = "participant_create.schema.json"
	WizardAnswers     = "wizard_answers.schema.json"
)

// FS holds every *.schema.json file in this directory
//
//go:embed *.schema.json
var FS embed.FS
