// Package runtimectx implements the append-only collector that helper
// primitives write Actions into while a script executes.
package runtimectx

import (
	"sync"

	"github.com/tcoulter/evmscript/pkg/ir"
)

// Context is the runtime collector a compile owns for the duration of one
// script evaluation. Pushed Actions are only ever appended, never removed
// or reordered; the only readable state is the two Action buckets and the
// config map.
type Context struct {
	mu          sync.Mutex
	actions     []*ir.Action
	tailActions []*ir.Action
	config      map[string]any
}

// New returns an empty Context.
func New() *Context {
	return &Context{config: make(map[string]any)}
}

// Push records a, routing it into the tail bucket if a.IsTail is set and
// into the main bucket otherwise. Helpers call this for every Action they
// construct through the catalogue, including ones later adopted as
// children; the processor's flatten pass skips those and reaches them
// through their parent instead.
func (c *Context) Push(a *ir.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.IsTail {
		c.tailActions = append(c.tailActions, a)
	} else {
		c.actions = append(c.actions, a)
	}
}

// Actions returns the main-bucket Actions in push order.
func (c *Context) Actions() []*ir.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ir.Action, len(c.actions))
	copy(out, c.actions)
	return out
}

// TailActions returns the deferred data-blob Actions in push order.
func (c *Context) TailActions() []*ir.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ir.Action, len(c.tailActions))
	copy(out, c.tailActions)
	return out
}

// SetConfig stores a process-level config flag, as set by the $("key",
// value) helper.
func (c *Context) SetConfig(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
}

// ConfigBool returns the boolean config flag named key, defaulting to
// false if unset or not a bool.
func (c *Context) ConfigBool(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.config[key].(bool)
	return ok && v
}
