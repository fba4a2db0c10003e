// Package handler provides named access to nested tables: each Handler owns
// one relation plus its immutable field map, and the Registry coordinates
// flattening and join preparation across handlers by name.
package handler

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/pkg/qualifier"
	"github.com/leapstack-labs/nestframe/pkg/schema"
)

// Handler binds a relation to its field map and an optional backing
// qualifier. The field map is computed once at construction and is safe for
// concurrent reads. SetQualifier is the only mutator; callers that share a
// handler across goroutines must synchronize writes themselves
// (last-writer-wins otherwise).
type Handler struct {
	rel    *engine.Relation
	fields *schema.FieldMap
	qual   string
}

// New introspects the relation exactly once and builds the handler.
// Schema walking and flat-name generation happen here, so malformed or
// colliding schemas fail at construction, not at first use. An empty
// qualifier marks the table as in-memory.
func New(ctx context.Context, rel *engine.Relation, qual string, policy schema.NamePolicy, maxDepth int) (*Handler, error) {
	cols, err := rel.Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect relation: %w", err)
	}
	fields, err := schema.NewFieldMap(cols, policy, maxDepth)
	if err != nil {
		return nil, err
	}
	return &Handler{rel: rel, fields: fields, qual: qual}, nil
}

// Relation returns the underlying deferred relation.
func (h *Handler) Relation() *engine.Relation {
	return h.rel
}

// Fields returns the immutable field map.
func (h *Handler) Fields() *schema.FieldMap {
	return h.fields
}

// Qualifier returns the backing qualifier, empty for in-memory tables.
func (h *Handler) Qualifier() string {
	return h.qual
}

// SetQualifier replaces the backing qualifier. An empty string reverts the
// handler to in-memory status.
func (h *Handler) SetQualifier(q string) {
	h.qual = q
}

// HasBacking reports whether a backing qualifier is set.
func (h *Handler) HasBacking() bool {
	return h.qual != ""
}

// BackingInfo parses the qualifier into its structured form. It never fails:
// unparseable qualifiers come back as custom with the raw string preserved.
func (h *Handler) BackingInfo() qualifier.Info {
	return qualifier.Parse(h.qual)
}

// Extract flattens the handler's relation. A nil subset extracts every
// nested path; see engine.Extract for the full contract.
func (h *Handler) Extract(subset []string) (*engine.Relation, error) {
	return engine.Extract(h.rel, h.fields, subset)
}
