// Package skill holds the secretary-mode task handlers and the registry that
// routes a classified intent to one of them.
package skill

import (
	"context"
	"sort"

	contractx "github.com/avamind/ava-core/agent/contract"
	sessionx "github.com/avamind/ava-core/agent/session"
)

// Skill is the handler protocol. The session reference lets a handler park a
// pending confirmation to implement a multi-turn sub-protocol; handlers must
// not touch any other session state.
type Skill interface {
	Handle(ctx context.Context, userID string, intent contractx.ParsedIntent, userTZ string, sess *sessionx.Session) (string, error)
}

// Registry maps intent labels to handlers. It is populated by explicit
// Register calls during startup composition (no import-time side effects)
// and is read-only afterwards.
type Registry struct {
	handlers map[string]Skill
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Skill)}
}

// Register binds a handler to an intent label. Later registrations replace
// earlier ones.
func (r *Registry) Register(name string, s Skill) {
	if name == "" || s == nil {
		return
	}
	r.handlers[name] = s
}

// Resolve returns the handler for a label.
func (r *Registry) Resolve(name string) (Skill, bool) {
	s, ok := r.handlers[name]
	return s, ok
}

// Names lists registered labels, sorted. For logging and tests.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
