package driven

import "context"

// TokenProvider supplies a bearer token for Azure management calls.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}
