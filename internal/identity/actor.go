// Package identity carries the authenticated actor through request contexts.
package identity

import "context"

// Actor is the authenticated identity attempting an action.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Provider exposes the current actor, if any.
type Provider interface {
	CurrentActor(ctx context.Context) (Actor, bool)
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.ID == "" {
		return Actor{}, false
	}
	return a, true
}

// ContextProvider reads the actor stored by the auth middleware.
type ContextProvider struct{}

func (ContextProvider) CurrentActor(ctx context.Context) (Actor, bool) {
	return FromContext(ctx)
}
