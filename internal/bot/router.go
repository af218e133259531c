package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/avekrivov/warden-bot/internal/bot/handlers"
)

// Router dispatches slash-command interactions to registered handlers. Names
// not in the registry fall through to the default handler, which serves the
// stored custom commands.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a slash command name.
func (r *Router) RegisterCommand(name string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for unregistered command names.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route directs the incoming interaction to the matching handler.
func (r *Router) Route(ctx context.Context, ic *handlers.Interaction) error {
	if ic == nil {
		return nil
	}

	handler := r.getCommandHandler(ic.CommandName)
	if handler == nil {
		handler = r.getDefaultHandler()
	}
	if handler == nil {
		r.log.Info("no handler for command", slog.String("command", ic.CommandName))
		return nil
	}

	return r.executeHandler(handler, ctx, ic)
}

func (r *Router) executeHandler(h handlers.Handler, ctx context.Context, ic *handlers.Interaction) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(ctx, ic)
}

func (r *Router) getCommandHandler(name string) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[name]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getDefaultHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
