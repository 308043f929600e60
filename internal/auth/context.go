package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
)

// Anonymous is the role of a caller without a verified token.
const Anonymous = "anonymous"

// Actor is the caller identity every service operation is evaluated against.
// UserID is empty for anonymous callers and system actions.
type Actor struct {
	UserID string
	Role   string
}

// System is used for actions with no human caller (seeding, maintenance).
func System(role string) Actor { return Actor{Role: role} }

func (a Actor) IsAnonymous() bool { return a.UserID == "" && (a.Role == "" || a.Role == Anonymous) }

func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}

// ActorFrom returns the caller identity, or an anonymous actor when the
// request carried no token.
func ActorFrom(ctx context.Context) Actor {
	uid, _ := UserID(ctx)
	role, err := Role(ctx)
	if err != nil {
		role = Anonymous
	}
	return Actor{UserID: uid, Role: role}
}
