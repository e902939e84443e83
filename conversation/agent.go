package conversation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/docchat"
)

// Node identifiers of the documentation assistant.
const (
	AnalyzeIntent   NodeID = "analyze_intent"
	RetrieveContext NodeID = "retrieve_context"
	ComposeReply    NodeID = "compose_reply"
	ClarifyQuestion NodeID = "clarify_question"
)

// Branch keys returned by RouteByIntent.
const (
	BranchRetrieve BranchKey = "retrieve_context"
	BranchClarify  BranchKey = "clarify_question"
)

// Fixed replies.
const (
	ClarificationResponse = "I'm not sure I understood your question. Could you rephrase it or add more detail about what you need from the documentation?"
	ApologyResponse       = "Sorry, something went wrong while generating the answer. Please try again."
)

// ContextSeparator is placed between retrieved passages.
const ContextSeparator = "\n\n---\n\n"

// Agent holds the capabilities used by the assistant's nodes.
type Agent struct {
	Model     docchat.LanguageModel
	Retriever docchat.Retriever
	Prompts   docchat.PromptSet
	Logger    *slog.Logger
}

// Compile builds the assistant's machine:
//
//	analyze_intent -> retrieve_context -> compose_reply -> END
//	analyze_intent -> clarify_question -> END
func (a *Agent) Compile(opts ...Option) (*Machine, error) {
	b := NewBuilder()
	b.AddNode(AnalyzeIntent, a.AnalyzeIntent)
	b.AddNode(RetrieveContext, a.RetrieveContext)
	b.AddNode(ComposeReply, a.ComposeReply)
	b.AddNode(ClarifyQuestion, ClarifyQuestionNode)
	b.SetEntryPoint(AnalyzeIntent)
	b.AddConditionalEdges(AnalyzeIntent, RouteByIntent, map[BranchKey]NodeID{
		BranchRetrieve: RetrieveContext,
		BranchClarify:  ClarifyQuestion,
	})
	b.AddEdge(RetrieveContext, ComposeReply)
	b.AddEdge(ComposeReply, End)
	b.AddEdge(ClarifyQuestion, End)
	return b.Compile(opts...)
}

// AnalyzeIntent classifies the question. A render or model failure is
// logged and resolves the intent to IntentUnclear.
func (a *Agent) AnalyzeIntent(ctx context.Context, state docchat.ConversationState) (docchat.Update, error) {
	out, err := a.generate(ctx, a.Prompts.IntentAnalysis, map[string]string{
		docchat.VarQuestion: state.Question,
		docchat.VarHistory:  state.FlattenHistory(),
	})
	if err != nil {
		a.logFailure(ctx, "intent analysis failed", err)
		intent := docchat.IntentUnclear
		return docchat.Update{Intent: &intent, Contained: err}, nil
	}
	intent := strings.TrimSpace(out)
	return docchat.Update{Intent: &intent}, nil
}

// RetrieveContext searches the index for the question and joins the
// passages in retrieval order. Retrieval errors are returned.
func (a *Agent) RetrieveContext(ctx context.Context, state docchat.ConversationState) (docchat.Update, error) {
	passages, err := a.Retriever.Search(ctx, state.Question)
	if err != nil {
		return docchat.Update{}, err
	}
	joined := strings.Join(passages, ContextSeparator)
	return docchat.Update{Context: &joined}, nil
}

// ComposeReply answers the question from the retrieved context. A render
// or model failure is logged and replaced by ApologyResponse.
func (a *Agent) ComposeReply(ctx context.Context, state docchat.ConversationState) (docchat.Update, error) {
	response, err := a.generate(ctx, a.Prompts.ResponseGeneration, map[string]string{
		docchat.VarQuestion: state.Question,
		docchat.VarContext:  state.Context,
		docchat.VarHistory:  state.FlattenHistory(),
	})
	if err != nil {
		a.logFailure(ctx, "response generation failed", err)
		response = ApologyResponse
		return docchat.Update{Response: &response, Contained: err}, nil
	}
	return docchat.Update{Response: &response}, nil
}

func (a *Agent) generate(ctx context.Context, tmpl docchat.PromptTemplate, vars map[string]string) (string, error) {
	prompt, err := tmpl.Render(vars)
	if err != nil {
		return "", err
	}
	return a.Model.Generate(ctx, prompt)
}

// logFailure logs a contained failure. Failures caused by cancellation are
// expected on shutdown and logged at debug level.
func (a *Agent) logFailure(ctx context.Context, msg string, err error) {
	if ctx.Err() != nil {
		a.logger().DebugContext(ctx, msg, "err", err)
		return
	}
	a.logger().ErrorContext(ctx, msg, "err", err)
}

// ClarifyQuestionNode asks the user to rephrase. It calls nothing.
func ClarifyQuestionNode(_ context.Context, _ docchat.ConversationState) (docchat.Update, error) {
	response := ClarificationResponse
	return docchat.Update{Response: &response}, nil
}

// RouteByIntent sends recognised intents to retrieval and everything else,
// IntentUnclear included, to clarification.
func RouteByIntent(state docchat.ConversationState) BranchKey {
	switch state.Intent {
	case docchat.IntentGeneralQuestion, docchat.IntentCodeQuestion, docchat.IntentFollowUp:
		return BranchRetrieve
	default:
		return BranchClarify
	}
}

func (a *Agent) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}
