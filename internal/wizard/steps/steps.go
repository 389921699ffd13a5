// Package steps defines the intake wizard step sequence and which steps are
// visible for a given role and academic stage.
package steps

import (
	"fmt"

	"github.com/jonathan/matching-guru/internal/types"
)

// ID identifies a wizard step
type ID string

// Wizard steps
const (
	RoleAndStage ID = "role_and_stage"
	Placement    ID = "placement"
	Criteria     ID = "criteria"
	Review       ID = "review"
)

// Definition defines metadata for a wizard step
type Definition struct {
	ID          ID
	Title       string
	Conditional bool
}

// Registry holds all step definitions
var Registry = map[ID]Definition{
	RoleAndStage: {ID: RoleAndStage, Title: "Role & academic stage"},
	Placement:    {ID: Placement, Title: "Placement", Conditional: true},
	Criteria:     {ID: Criteria, Title: "Matching criteria"},
	Review:       {ID: Review, Title: "Review"},
}

// All returns every step in wizard order, including conditional ones
func All() []ID {
	return []ID{RoleAndStage, Placement, Criteria, Review}
}

// GetDefinition returns the step definition for the given ID
func GetDefinition(id ID) (Definition, error) {
	def, exists := Registry[id]
	if !exists {
		return Definition{}, fmt.Errorf("unknown step: %s", id)
	}
	return def, nil
}

// PlacementVisible reports whether the placement step applies to this role and stage
func PlacementVisible(role types.Role, stage types.AcademicStage) bool {
	return (stage == types.StageSecondYearUndergraduate && role == types.RoleMentee) ||
		stage == types.StageFinalYearUndergraduate
}

// ComputeVisibleSteps returns the step sequence shown for role and stage.
// Both the session and the validator index into this list.
func ComputeVisibleSteps(role types.Role, stage types.AcademicStage) []ID {
	visible := make([]ID, 0, 4)
	visible = append(visible, RoleAndStage)
	if PlacementVisible(role, stage) {
		visible = append(visible, Placement)
	}
	return append(visible, Criteria, Review)
}

// IndexOf returns the position of id in visible, or -1
func IndexOf(visible []ID, id ID) int {
	for i, s := range visible {
		if s == id {
			return i
		}
	}
	return -1
}
