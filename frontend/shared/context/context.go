package context

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated caller as asserted by the gateway.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Roles []string
}

type actorKey struct{}

func NewContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func GetActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
