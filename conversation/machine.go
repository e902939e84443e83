package conversation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
)

// NodeID identifies a step of a Machine.
type NodeID string

// End is the terminal pseudo-node. A transition to End finishes the run.
const End NodeID = "__end__"

// BranchKey selects an outgoing transition of a node.
type BranchKey string

// Always is the branch key of an unconditional transition.
const Always BranchKey = ""

// NodeFunc executes one step. It receives the current state and returns only
// the fields it sets.
type NodeFunc func(ctx context.Context, state docchat.ConversationState) (docchat.Update, error)

// RouteFunc picks the branch to follow after a node has run.
type RouteFunc func(state docchat.ConversationState) BranchKey

type transition struct {
	from NodeID
	key  BranchKey
}

// Builder assembles and validates a Machine. The first error recorded by an
// Add call is returned by Compile.
type Builder struct {
	entry  NodeID
	order  []NodeID
	nodes  map[NodeID]NodeFunc
	routes map[NodeID]RouteFunc
	table  map[transition]NodeID
	err    error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:  make(map[NodeID]NodeFunc),
		routes: make(map[NodeID]RouteFunc),
		table:  make(map[transition]NodeID),
	}
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = docchat.Errorf(docchat.EINTERNAL, format, args...)
	}
}

// AddNode registers a step under id.
func (b *Builder) AddNode(id NodeID, fn NodeFunc) {
	switch {
	case id == "" || id == End:
		b.fail("invalid node id %q", id)
	case fn == nil:
		b.fail("node %q has no handler", id)
	case b.nodes[id] != nil:
		b.fail("node %q added twice", id)
	default:
		b.nodes[id] = fn
		b.order = append(b.order, id)
	}
}

// SetEntryPoint sets the first node of every run.
func (b *Builder) SetEntryPoint(id NodeID) {
	b.entry = id
}

// AddEdge adds an unconditional transition.
func (b *Builder) AddEdge(from, to NodeID) {
	if b.hasOutgoing(from) {
		b.fail("node %q already has outgoing transitions", from)
		return
	}
	b.table[transition{from, Always}] = to
}

// AddConditionalEdges routes from a node through route, following the
// target registered for the returned branch key.
func (b *Builder) AddConditionalEdges(from NodeID, route RouteFunc, targets map[BranchKey]NodeID) {
	switch {
	case b.hasOutgoing(from):
		b.fail("node %q already has outgoing transitions", from)
		return
	case route == nil:
		b.fail("node %q has no router", from)
		return
	case len(targets) == 0:
		b.fail("node %q has no branch targets", from)
		return
	}
	b.routes[from] = route
	for key, to := range targets {
		b.table[transition{from, key}] = to
	}
}

func (b *Builder) hasOutgoing(from NodeID) bool {
	if b.routes[from] != nil {
		return true
	}
	_, ok := b.table[transition{from, Always}]
	return ok
}

// Compile validates the graph and returns a runnable Machine.
func (b *Builder) Compile(opts ...Option) (*Machine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.entry == "" {
		return nil, docchat.Errorf(docchat.EINTERNAL, "entry point not set")
	}
	if b.nodes[b.entry] == nil {
		return nil, docchat.Errorf(docchat.EINTERNAL, "entry point %q is not a node", b.entry)
	}
	for t, to := range b.table {
		if b.nodes[t.from] == nil {
			return nil, docchat.Errorf(docchat.EINTERNAL, "transition from unknown node %q", t.from)
		}
		if to != End && b.nodes[to] == nil {
			return nil, docchat.Errorf(docchat.EINTERNAL, "transition from %q to unknown node %q", t.from, to)
		}
	}
	for _, id := range b.order {
		if !b.hasOutgoing(id) {
			return nil, docchat.Errorf(docchat.EINTERNAL, "node %q has no outgoing transition", id)
		}
	}

	m := &Machine{
		entry:  b.entry,
		order:  append([]NodeID(nil), b.order...),
		nodes:  make(map[NodeID]NodeFunc, len(b.nodes)),
		routes: make(map[NodeID]RouteFunc, len(b.routes)),
		table:  make(map[transition]NodeID, len(b.table)),
	}
	for k, v := range b.nodes {
		m.nodes[k] = v
	}
	for k, v := range b.routes {
		m.routes[k] = v
	}
	for k, v := range b.table {
		m.table[k] = v
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Option configures a Machine at compile time.
type Option func(*Machine)

// WithHooks attaches lifecycle hooks to the machine.
func WithHooks(h Hooks) Option {
	return func(m *Machine) {
		m.hooks = ChainHooks(m.hooks, h)
	}
}

// Machine runs a compiled graph of nodes over a ConversationState.
// It is immutable and safe to reuse across turns.
type Machine struct {
	entry  NodeID
	order  []NodeID
	nodes  map[NodeID]NodeFunc
	routes map[NodeID]RouteFunc
	table  map[transition]NodeID
	hooks  Hooks
}

// Run executes the graph from the entry point until End. Each node runs at
// most once. The returned state is the last merged state, also on error.
func (m *Machine) Run(ctx context.Context, state docchat.ConversationState) (docchat.ConversationState, error) {
	visited := make(map[NodeID]bool, len(m.nodes))
	for current := m.entry; current != End; {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if visited[current] {
			return state, docchat.Errorf(docchat.EINTERNAL, "node %q visited twice in one run", current)
		}
		visited[current] = true

		update, err := m.step(ctx, current, state)
		if err != nil {
			return state, fmt.Errorf("%s: %w", current, err)
		}
		state = state.Merge(update)

		next, err := m.next(current, state)
		if err != nil {
			return state, err
		}
		current = next
	}
	return state, nil
}

func (m *Machine) step(ctx context.Context, id NodeID, state docchat.ConversationState) (docchat.Update, error) {
	if m.hooks.OnNodeEnter != nil {
		m.hooks.OnNodeEnter(ctx, NodeEvent{Node: id})
	}
	start := time.Now()
	update, err := m.nodes[id](ctx, state)
	if m.hooks.OnNodeLeave != nil {
		m.hooks.OnNodeLeave(ctx, NodeEvent{
			Node:      id,
			Duration:  time.Since(start),
			Fields:    update.Fields(),
			Err:       err,
			Contained: update.Contained,
		})
	}
	return update, err
}

func (m *Machine) next(from NodeID, state docchat.ConversationState) (NodeID, error) {
	key := Always
	if route := m.routes[from]; route != nil {
		key = route(state)
	}
	to, ok := m.table[transition{from, key}]
	if !ok {
		return "", docchat.Errorf(docchat.EINTERNAL, "no transition from %q for branch %q", from, key)
	}
	return to, nil
}

// Nodes returns the node ids in registration order.
func (m *Machine) Nodes() []NodeID {
	return append([]NodeID(nil), m.order...)
}

// Mermaid renders the graph as a Mermaid flowchart.
func (m *Machine) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    __start__((start))\n")
	for _, id := range m.order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, id)
	}
	sb.WriteString("    __end__((end))\n")
	fmt.Fprintf(&sb, "    __start__ --> %s\n", m.entry)
	for _, id := range m.order {
		var keys []BranchKey
		for t := range m.table {
			if t.from == id {
				keys = append(keys, t.key)
			}
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, key := range keys {
			to := m.table[transition{id, key}]
			if key == Always {
				fmt.Fprintf(&sb, "    %s --> %s\n", id, to)
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, key, to)
		}
	}
	return sb.String()
}
