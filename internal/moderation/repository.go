package moderation

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("moderation: submission not found")

// Repository stores submissions. There is no delete.
type Repository interface {
	Insert(ctx context.Context, s Submission) (Submission, error)
	Get(ctx context.Context, id int64) (Submission, error)
	// List returns newest first.
	List(ctx context.Context, f ListFilter) ([]Submission, error)
	// Transition moves a pending submission to status, storing notes and the
	// review time. It reports false with the current submission when it was
	// no longer pending; the check and the write are one atomic step.
	Transition(ctx context.Context, id int64, status Status, notes string, at time.Time) (Submission, bool, error)
	UnlinkVictim(ctx context.Context, victimID int64) error
}
