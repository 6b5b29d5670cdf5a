// Package mocks provides an in-memory Otel for tests. Scopes are no-ops except that they
// remember the errors traced through them.
package mocks

import (
	"context"
	"sync"

	"libres/infras/otel"
)

type Otel struct {
	mu     sync.Mutex
	errors []error
}

func NewOtel() *Otel {
	return &Otel{}
}

func (o *Otel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, &scope{owner: o}
}

func (o *Otel) Shutdown(context.Context) error {
	return nil
}

// Errors returns every error traced so far, in order.
func (o *Otel) Errors() []error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]error(nil), o.errors...)
}

type scope struct {
	owner *Otel
}

func (s *scope) End() {}
func (s *scope) AddEvent(string) {}
func (s *scope) SetAttribute(string, any) {}
func (s *scope) SetAttributes(map[string]any) {}

func (s *scope) TraceError(err error) {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	s.owner.errors = append(s.owner.errors, err)
}

func (s *scope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}
