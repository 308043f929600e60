package audit

import "time"

// Entry is an immutable, append-only record of one mutation.
//
// Invariants:
// - Entries are never updated; only the superuser purge path deletes them.
// - Changes is always a JSON object, never null.
// - ActorUserID is empty for anonymous and system actions (NULL in storage).
type Entry struct {
	ID          string `json:"id"`
	ActorUserID string `json:"actor_user_id,omitempty"`
	// ActorRole is the role at the time of the action.
	ActorRole   string         `json:"actor_role,omitempty"`
	Action      Action         `json:"action"`
	TargetModel string         `json:"target_model"`
	TargetID    *int64         `json:"target_id,omitempty"`
	Changes     map[string]any `json:"changes"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionApprove, ActionReject:
		return true
	default:
		return false
	}
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Action      Action
	TargetModel string
	TargetID    *int64
	ActorUserID string
	Since       time.Time
	Until       time.Time
	Limit       int
	Offset      int
}

func (f Filter) matches(e Entry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.TargetModel != "" && e.TargetModel != f.TargetModel {
		return false
	}
	if f.TargetID != nil && (e.TargetID == nil || *e.TargetID != *f.TargetID) {
		return false
	}
	if f.ActorUserID != "" && e.ActorUserID != f.ActorUserID {
		return false
	}
	if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// ID is a helper for building TargetID from a plain id.
func ID(id int64) *int64 { return &id }
