package prometheus_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/conversation"
	"github.com/fwojciec/docchat/mock"
	docprom "github.com/fwojciec/docchat/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	t.Parallel()

	t.Run("counts visits and errors per node", func(t *testing.T) {
		t.Parallel()

		m := docprom.NewMetrics()
		hooks := m.Hooks()
		ctx := context.Background()

		hooks.OnNodeLeave(ctx, conversation.NodeEvent{Node: conversation.AnalyzeIntent, Duration: 20 * time.Millisecond})
		hooks.OnNodeLeave(ctx, conversation.NodeEvent{Node: conversation.AnalyzeIntent, Duration: 30 * time.Millisecond})
		hooks.OnNodeLeave(ctx, conversation.NodeEvent{Node: conversation.RetrieveContext, Err: errors.New("quota")})

		expected := `
# HELP docchat_node_errors_total Total number of node visits that returned an error.
# TYPE docchat_node_errors_total counter
docchat_node_errors_total{node="retrieve_context"} 1
# HELP docchat_node_visits_total Total number of node visits.
# TYPE docchat_node_visits_total counter
docchat_node_visits_total{node="analyze_intent"} 2
docchat_node_visits_total{node="retrieve_context"} 1
`
		err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
			"docchat_node_visits_total", "docchat_node_errors_total")
		require.NoError(t, err)
	})

	t.Run("counts contained failures as degraded visits", func(t *testing.T) {
		t.Parallel()

		m := docprom.NewMetrics()
		agent := &conversation.Agent{
			Prompts: docchat.PromptSet{
				IntentAnalysis:     docchat.PromptTemplate{Human: "{history} {question}"},
				ResponseGeneration: docchat.PromptTemplate{Human: "{history} {context} {question}"},
			},
			Model: &mock.LanguageModel{
				GenerateFn: func(context.Context, docchat.Prompt) (string, error) {
					return "", docchat.Errorf(docchat.EPROVIDER, "quota exceeded")
				},
			},
		}
		machine, err := agent.Compile(conversation.WithHooks(m.Hooks()))
		require.NoError(t, err)

		state, err := machine.Run(context.Background(), docchat.NewConversationState("What is LangChain?", nil))
		require.NoError(t, err)
		require.Equal(t, docchat.IntentUnclear, state.Intent)

		expected := `
# HELP docchat_node_degraded_total Total number of node visits that contained a failure and fell back.
# TYPE docchat_node_degraded_total counter
docchat_node_degraded_total{node="analyze_intent"} 1
`
		err = testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "docchat_node_degraded_total")
		require.NoError(t, err)
		count, err := testutil.GatherAndCount(m.Registry(), "docchat_node_errors_total")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("observes node durations", func(t *testing.T) {
		t.Parallel()

		m := docprom.NewMetrics()
		m.Hooks().OnNodeLeave(context.Background(), conversation.NodeEvent{Node: conversation.ComposeReply, Duration: time.Second})

		count, err := testutil.GatherAndCount(m.Registry(), "docchat_node_duration_seconds")

		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("records a full machine run", func(t *testing.T) {
		t.Parallel()

		m := docprom.NewMetrics()
		b := conversation.NewBuilder()
		b.AddNode(conversation.ClarifyQuestion, conversation.ClarifyQuestionNode)
		b.SetEntryPoint(conversation.ClarifyQuestion)
		b.AddEdge(conversation.ClarifyQuestion, conversation.End)
		machine, err := b.Compile(conversation.WithHooks(m.Hooks()))
		require.NoError(t, err)

		_, err = machine.Run(context.Background(), docchat.NewConversationState("hmm?", nil))
		require.NoError(t, err)

		count, err := testutil.GatherAndCount(m.Registry(), "docchat_node_visits_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestMetrics_WriteFile(t *testing.T) {
	t.Parallel()

	m := docprom.NewMetrics()
	m.Hooks().OnNodeLeave(context.Background(), conversation.NodeEvent{Node: conversation.ClarifyQuestion})
	path := filepath.Join(t.TempDir(), "docchat.prom")

	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docchat_node_visits_total{node="clarify_question"} 1`)
}
