package docchat

import (
	"slices"
	"strings"
)

// Intent labels produced by intent analysis.
const (
	IntentGeneralQuestion = "general_question"
	IntentCodeQuestion    = "code_question"
	IntentFollowUp        = "follow_up"

	// IntentUnclear marks an unclear question or a failed classification.
	IntentUnclear = "unclear"
)

// StateField identifies an optional field of ConversationState.
type StateField uint8

// Optional state fields.
const (
	FieldIntent StateField = 1 << iota
	FieldContext
	FieldResponse
)

// String returns the names of the fields in f, comma separated.
func (f StateField) String() string {
	var names []string
	if f&FieldIntent != 0 {
		names = append(names, "intent")
	}
	if f&FieldContext != 0 {
		names = append(names, "context")
	}
	if f&FieldResponse != 0 {
		names = append(names, "response")
	}
	return strings.Join(names, ",")
}

// ConversationState is the record threaded through one turn. It is a value:
// nodes never modify it, they return an Update that Merge folds into a new
// record.
type ConversationState struct {
	Question string
	Intent   string
	Context  string
	Response string

	// History holds prior turn lines, alternating user and agent.
	History []string

	set StateField
}

// NewConversationState returns the initial state of a turn. History is
// copied so the turn cannot alias the caller's slice.
func NewConversationState(question string, history []string) ConversationState {
	return ConversationState{
		Question: question,
		History:  slices.Clone(history),
	}
}

// Has reports whether field has been set by a node.
func (s ConversationState) Has(field StateField) bool {
	return s.set&field != 0
}

// FlattenHistory joins the history lines with newlines.
func (s ConversationState) FlattenHistory() string {
	return strings.Join(s.History, "\n")
}

// Merge returns a copy of s with the non-nil fields of u applied.
func (s ConversationState) Merge(u Update) ConversationState {
	if u.Intent != nil {
		s.Intent = *u.Intent
		s.set |= FieldIntent
	}
	if u.Context != nil {
		s.Context = *u.Context
		s.set |= FieldContext
	}
	if u.Response != nil {
		s.Response = *u.Response
		s.set |= FieldResponse
	}
	return s
}

// Update is a partial state update; a node sets only the fields it owns.
type Update struct {
	Intent   *string
	Context  *string
	Response *string

	// Contained is a failure the node absorbed by falling back to a
	// degraded value. It is reported to hooks and never merged.
	Contained error
}

// Fields returns the set of fields the update carries.
func (u Update) Fields() StateField {
	var f StateField
	if u.Intent != nil {
		f |= FieldIntent
	}
	if u.Context != nil {
		f |= FieldContext
	}
	if u.Response != nil {
		f |= FieldResponse
	}
	return f
}
