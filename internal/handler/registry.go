package handler

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/internal/state"
	"github.com/leapstack-labs/nestframe/pkg/qualifier"
	"github.com/leapstack-labs/nestframe/pkg/schema"
)

// Registry holds handlers by name. The map itself is internally locked;
// handler field maps are immutable, so reads through Get never need the
// registry lock after retrieval.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Handler

	logger   *slog.Logger
	policy   schema.NamePolicy
	maxDepth int
	store    state.Store
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNamePolicy sets the flat-name policy applied to every handler built by
// the registry. Defaults to schema.UnderscoreNames.
func WithNamePolicy(policy schema.NamePolicy) Option {
	return func(r *Registry) { r.policy = policy }
}

// WithMaxDepth sets the schema walk depth limit for handlers built by the
// registry. Values <= 0 select schema.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Registry) { r.maxDepth = depth }
}

// WithStore attaches an operation history store. Recording is best-effort:
// store failures are logged and never fail the operation.
func WithStore(store state.Store) Option {
	return func(r *Registry) { r.store = store }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handlers: make(map[string]*Handler),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add builds a handler for the relation and registers it under name,
// replacing any prior entry. The schema walk runs here, so schema and
// collision errors surface immediately.
func (r *Registry) Add(ctx context.Context, name string, rel *engine.Relation, qual string) (*Handler, error) {
	h, err := New(ctx, rel, qual, r.policy, r.maxDepth)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.handlers[name] = h
	r.mu.Unlock()

	r.logger.Info("registered table",
		slog.String("name", name),
		slog.String("qualifier", qual),
		slog.Int("nested_fields", h.Fields().Len()))

	r.record(ctx, &state.Operation{Kind: state.OpAdd, Name: name, Qualifier: qual})
	return h, nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (*Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Name: name, Available: r.Names()}
	}
	return h, nil
}

// Remove drops the handler registered under name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	_, ok := r.handlers[name]
	if ok {
		delete(r.handlers, name)
	}
	r.mu.Unlock()
	if !ok {
		return &NotFoundError{Name: name, Available: r.Names()}
	}

	r.logger.Info("removed table", slog.String("name", name))
	return nil
}

// Has reports whether a handler is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// BackingStatus is one row of the registry's backing report.
type BackingStatus struct {
	Name      string
	Backed    bool
	Qualifier string
}

// Status reports the backing qualifier of every registered handler, sorted
// by name.
func (r *Registry) Status() []BackingStatus {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]BackingStatus, 0, len(names))
	for _, name := range names {
		h, ok := r.handlers[name]
		if !ok {
			continue
		}
		rows = append(rows, BackingStatus{Name: name, Backed: h.HasBacking(), Qualifier: h.Qualifier()})
	}
	return rows
}

// Prepare flattens the named table into a new handler. The subset follows
// the Extract contract (nil selects every nested path). The result inherits
// the source qualifier unchanged and is not registered.
func (r *Registry) Prepare(ctx context.Context, name string, fields []string) (*Handler, error) {
	src, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	rel, err := src.Extract(fields)
	if err != nil {
		return nil, err
	}

	h, err := New(ctx, rel, src.Qualifier(), r.policy, r.maxDepth)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prepared table",
		slog.String("name", name),
		slog.Int("requested_fields", len(fields)))

	r.record(ctx, &state.Operation{
		Kind:      state.OpPrepare,
		Name:      name,
		Qualifier: h.Qualifier(),
		Operands:  []string{operandQualifier(src)},
	})
	return h, nil
}

// record persists an operation to the history store when one is attached.
func (r *Registry) record(ctx context.Context, op *state.Operation) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordOperation(ctx, op); err != nil {
		r.logger.Warn("failed to record operation history",
			slog.String("kind", string(op.Kind)),
			slog.String("name", op.Name),
			slog.Any("error", err))
	}
}

// operandQualifier names a handler for lineage purposes.
func operandQualifier(h *Handler) string {
	if h.HasBacking() {
		return h.Qualifier()
	}
	return qualifier.Unnamed
}
