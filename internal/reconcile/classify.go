package reconcile

import (
	"net/http"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
)

// Action is the write set a record maps to.
type Action int

const (
	// ActionUpsertSuccess upserts the order row with completion stamped.
	ActionUpsertSuccess Action = iota
	// ActionUpsertFailure upserts the order row, appends a failure event and
	// stamps last_failed_at.
	ActionUpsertFailure
)

// Classify decides the action for one log record. Only a present status of
// 200 counts as success; an absent status is routed to the failure path by
// policy, since the source models "not yet resolved" and a resolved failure
// the same way downstream.
func Classify(rec *domain.LogRecord) Action {
	if rec.StatusCode != nil && *rec.StatusCode == http.StatusOK {
		return ActionUpsertSuccess
	}
	return ActionUpsertFailure
}
