package domain

import (
	"encoding/json"
	"time"
)

// Setup wizard step names, in order.
var WizardSteps = []string{
	"basics",
	"ceremonies",
	"guests",
	"hotels",
	"communication",
	"review",
}

// WizardState setup wizard progress for one event (wizard_states table).
// One row per event, upserted on every save.
type WizardState struct {
	EventID        int64           `db:"event_id"`
	CurrentStep    string          `db:"current_step"`
	CompletedSteps json.RawMessage `db:"completed_steps"` // JSONB list of step names
	UpdatedAt      time.Time       `db:"updated_at"`
}

// ValidWizardStep reports whether s is a known wizard step.
func ValidWizardStep(s string) bool {
	for _, step := range WizardSteps {
		if step == s {
			return true
		}
	}
	return false
}
