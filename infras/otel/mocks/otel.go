package mocks

import (
	"context"
	"sync"

	"insurai/infras/otel"
)

// Otel hands out recording scopes keyed by span name.
type Otel struct {
	mu     sync.Mutex
	scopes map[string][]*Scope
}

func NewOtel() *Otel {
	return &Otel{scopes: map[string][]*Scope{}}
}

func (o *Otel) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	scope := NewScope()

	o.mu.Lock()
	o.scopes[spanName] = append(o.scopes[spanName], scope)
	o.mu.Unlock()

	return ctx, scope
}

// Scopes returns every scope opened under spanName, oldest first.
func (o *Otel) Scopes(spanName string) []*Scope {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]*Scope(nil), o.scopes[spanName]...)
}

var _ otel.Otel = (*Otel)(nil)
