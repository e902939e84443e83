package conversation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setResponse(text string) conversation.NodeFunc {
	return func(_ context.Context, _ docchat.ConversationState) (docchat.Update, error) {
		return docchat.Update{Response: &text}, nil
	}
}

func noop(_ context.Context, _ docchat.ConversationState) (docchat.Update, error) {
	return docchat.Update{}, nil
}

func TestBuilder_Compile(t *testing.T) {
	t.Parallel()

	t.Run("requires an entry point", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.AddEdge("a", conversation.End)

		_, err := b.Compile()

		require.Error(t, err)
		assert.Equal(t, docchat.EINTERNAL, docchat.ErrorCode(err))
	})

	t.Run("rejects an entry point that is not a node", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.AddEdge("a", conversation.End)
		b.SetEntryPoint("missing")

		_, err := b.Compile()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("rejects edges to unknown nodes", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.SetEntryPoint("a")
		b.AddEdge("a", "ghost")

		_, err := b.Compile()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("rejects nodes without outgoing transitions", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.AddNode("b", noop)
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)

		_, err := b.Compile()

		require.Error(t, err)
		assert.Contains(t, err.Error(), `"b"`)
	})

	t.Run("rejects duplicate nodes", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.AddNode("a", noop)
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)

		_, err := b.Compile()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "added twice")
	})

	t.Run("rejects a second set of outgoing transitions", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)
		b.AddConditionalEdges("a", func(docchat.ConversationState) conversation.BranchKey { return "x" },
			map[conversation.BranchKey]conversation.NodeID{"x": conversation.End})

		_, err := b.Compile()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already has outgoing")
	})

	t.Run("rejects the end node as a regular node", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode(conversation.End, noop)

		_, err := b.Compile()

		require.Error(t, err)
	})
}

func TestMachine_Run(t *testing.T) {
	t.Parallel()

	t.Run("follows unconditional edges to the end", func(t *testing.T) {
		t.Parallel()

		var trace []conversation.NodeID
		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.AddNode("b", setResponse("done"))
		b.SetEntryPoint("a")
		b.AddEdge("a", "b")
		b.AddEdge("b", conversation.End)
		m, err := b.Compile(conversation.WithHooks(conversation.Hooks{
			OnNodeEnter: func(_ context.Context, e conversation.NodeEvent) {
				trace = append(trace, e.Node)
			},
		}))
		require.NoError(t, err)

		state, err := m.Run(context.Background(), docchat.NewConversationState("q", nil))

		require.NoError(t, err)
		assert.Equal(t, []conversation.NodeID{"a", "b"}, trace)
		assert.Equal(t, "done", state.Response)
		assert.Equal(t, "q", state.Question)
	})

	t.Run("follows the branch picked by the router", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.AddNode("left", setResponse("left"))
		b.AddNode("right", setResponse("right"))
		b.SetEntryPoint("a")
		b.AddConditionalEdges("a", func(s docchat.ConversationState) conversation.BranchKey {
			return conversation.BranchKey(s.Question)
		}, map[conversation.BranchKey]conversation.NodeID{"l": "left", "r": "right"})
		b.AddEdge("left", conversation.End)
		b.AddEdge("right", conversation.End)
		m, err := b.Compile()
		require.NoError(t, err)

		state, err := m.Run(context.Background(), docchat.NewConversationState("r", nil))

		require.NoError(t, err)
		assert.Equal(t, "right", state.Response)
	})

	t.Run("fails on a branch key without a transition", func(t *testing.T) {
		t.Parallel()

		b := conversation.NewBuilder()
		b.AddNode("a", noop)
		b.SetEntryPoint("a")
		b.AddConditionalEdges("a", func(docchat.ConversationState) conversation.BranchKey { return "nowhere" },
			map[conversation.BranchKey]conversation.NodeID{"x": conversation.End})
		m, err := b.Compile()
		require.NoError(t, err)

		_, err = m.Run(context.Background(), docchat.NewConversationState("q", nil))

		require.Error(t, err)
		assert.Equal(t, docchat.EINTERNAL, docchat.ErrorCode(err))
		assert.Contains(t, err.Error(), "nowhere")
	})

	t.Run("fails when a node would run twice", func(t *testing.T) {
		t.Parallel()

		calls := 0
		b := conversation.NewBuilder()
		b.AddNode("a", func(_ context.Context, _ docchat.ConversationState) (docchat.Update, error) {
			calls++
			return docchat.Update{}, nil
		})
		b.AddNode("b", noop)
		b.SetEntryPoint("a")
		b.AddEdge("a", "b")
		b.AddEdge("b", "a")
		m, err := b.Compile()
		require.NoError(t, err)

		_, err = m.Run(context.Background(), docchat.NewConversationState("q", nil))

		require.Error(t, err)
		assert.Equal(t, docchat.EINTERNAL, docchat.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("wraps node errors with the node id", func(t *testing.T) {
		t.Parallel()

		nodeErr := docchat.Errorf(docchat.EPROVIDER, "index offline")
		b := conversation.NewBuilder()
		b.AddNode("a", func(_ context.Context, _ docchat.ConversationState) (docchat.Update, error) {
			return docchat.Update{}, nodeErr
		})
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)
		m, err := b.Compile()
		require.NoError(t, err)

		_, err = m.Run(context.Background(), docchat.NewConversationState("q", nil))

		require.Error(t, err)
		assert.ErrorIs(t, err, nodeErr)
		assert.Equal(t, docchat.EPROVIDER, docchat.ErrorCode(err))
		assert.Contains(t, err.Error(), "a: ")
	})

	t.Run("stops on a cancelled context", func(t *testing.T) {
		t.Parallel()

		called := false
		b := conversation.NewBuilder()
		b.AddNode("a", func(_ context.Context, _ docchat.ConversationState) (docchat.Update, error) {
			called = true
			return docchat.Update{}, nil
		})
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)
		m, err := b.Compile()
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = m.Run(ctx, docchat.NewConversationState("q", nil))

		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, called)
	})

	t.Run("reports duration fields and errors on leave", func(t *testing.T) {
		t.Parallel()

		var events []conversation.NodeEvent
		b := conversation.NewBuilder()
		b.AddNode("a", setResponse("x"))
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)
		m, err := b.Compile(conversation.WithHooks(conversation.Hooks{
			OnNodeLeave: func(_ context.Context, e conversation.NodeEvent) {
				events = append(events, e)
			},
		}))
		require.NoError(t, err)

		_, err = m.Run(context.Background(), docchat.NewConversationState("q", nil))

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, conversation.NodeID("a"), events[0].Node)
		assert.Equal(t, docchat.FieldResponse, events[0].Fields)
		assert.NoError(t, events[0].Err)
		assert.GreaterOrEqual(t, events[0].Duration.Nanoseconds(), int64(0))
		assert.NoError(t, events[0].Contained)
	})

	t.Run("reports contained failures on leave without failing the run", func(t *testing.T) {
		t.Parallel()

		modelErr := errors.New("model unavailable")
		var events []conversation.NodeEvent
		b := conversation.NewBuilder()
		b.AddNode("a", func(context.Context, docchat.ConversationState) (docchat.Update, error) {
			fallback := "fallback"
			return docchat.Update{Response: &fallback, Contained: modelErr}, nil
		})
		b.SetEntryPoint("a")
		b.AddEdge("a", conversation.End)
		m, err := b.Compile(conversation.WithHooks(conversation.Hooks{
			OnNodeLeave: func(_ context.Context, e conversation.NodeEvent) {
				events = append(events, e)
			},
		}))
		require.NoError(t, err)

		state, err := m.Run(context.Background(), docchat.NewConversationState("q", nil))

		require.NoError(t, err)
		assert.Equal(t, "fallback", state.Response)
		require.Len(t, events, 1)
		assert.NoError(t, events[0].Err)
		assert.ErrorIs(t, events[0].Contained, modelErr)
	})
}

func TestChainHooks(t *testing.T) {
	t.Parallel()

	var calls []string
	h := conversation.ChainHooks(
		conversation.Hooks{OnNodeEnter: func(context.Context, conversation.NodeEvent) { calls = append(calls, "first") }},
		conversation.Hooks{},
		conversation.Hooks{
			OnNodeEnter: func(context.Context, conversation.NodeEvent) { calls = append(calls, "second") },
			OnNodeLeave: func(context.Context, conversation.NodeEvent) { calls = append(calls, "leave") },
		},
	)

	h.OnNodeEnter(context.Background(), conversation.NodeEvent{})
	h.OnNodeLeave(context.Background(), conversation.NodeEvent{})

	assert.Equal(t, []string{"first", "second", "leave"}, calls)
}

func TestMachine_Mermaid(t *testing.T) {
	t.Parallel()

	m, err := (&conversation.Agent{}).Compile()
	require.NoError(t, err)

	out := m.Mermaid()

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "__start__ --> analyze_intent")
	assert.Contains(t, out, `analyze_intent -- "clarify_question" --> clarify_question`)
	assert.Contains(t, out, `analyze_intent -- "retrieve_context" --> retrieve_context`)
	assert.Contains(t, out, "retrieve_context --> compose_reply")
	assert.Contains(t, out, "compose_reply --> __end__")
	assert.Contains(t, out, "clarify_question --> __end__")
	assert.Equal(t, []conversation.NodeID{
		conversation.AnalyzeIntent,
		conversation.RetrieveContext,
		conversation.ComposeReply,
		conversation.ClarifyQuestion,
	}, m.Nodes())
}
