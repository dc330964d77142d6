package ports

import "context"

// Executor runs work under the quota of routeKey, absorbing rate-limit
// signals from work.
type Executor interface {
	Do(ctx context.Context, routeKey string, work func(ctx context.Context) error) error
}
