package mocks

import (
	"sync"

	"insurai/infras/otel"
)

// Scope records what code under test traced. It never exports anything.
type Scope struct {
	mu     sync.Mutex
	Errors []error
	Events []string
	Ended  bool
}

func NewScope() *Scope {
	return &Scope{}
}

func (s *Scope) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ended = true
}

func (s *Scope) TraceError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Errors = append(s.Errors, err)
}

func (s *Scope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *Scope) AddEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Events = append(s.Events, name)
}

func (s *Scope) SetAttribute(_ string, _ any) {}

func (s *Scope) SetAttributes(_ map[string]any) {}

var _ otel.Scope = (*Scope)(nil)
