package docchat

import (
	"io"
	"regexp"
	"slices"

	"github.com/valyala/fasttemplate"
)

// Prompt variable names.
const (
	VarQuestion = "question"
	VarHistory  = "history"
	VarContext  = "context"
)

var (
	placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// PromptTemplate is a fixed system instruction plus a human template with
// {name} placeholders.
type PromptTemplate struct {
	System string `yaml:"system" json:"system"`
	Human  string `yaml:"human" json:"human"`
}

// Placeholders returns the distinct variable names referenced by the
// template in order of first appearance.
func (t PromptTemplate) Placeholders() []string {
	var names []string
	for _, part := range []string{t.System, t.Human} {
		for _, m := range placeholderRe.FindAllStringSubmatch(part, -1) {
			if !slices.Contains(names, m[1]) {
				names = append(names, m[1])
			}
		}
	}
	return names
}

// Render substitutes vars into both parts of the template.
// Returns EMISSINGVAR if any placeholder has no binding.
func (t PromptTemplate) Render(vars map[string]string) (Prompt, error) {
	system, err := render(t.System, vars)
	if err != nil {
		return Prompt{}, err
	}
	human, err := render(t.Human, vars)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, Human: human}, nil
}

// render substitutes {name} tags in a single pass. Braces around anything
// that is not an identifier are copied through.
func render(text string, vars map[string]string) (string, error) {
	return fasttemplate.ExecuteFuncStringWithErr(text, "{", "}", func(w io.Writer, tag string) (int, error) {
		if !identRe.MatchString(tag) {
			return io.WriteString(w, "{"+tag+"}")
		}
		v, ok := vars[tag]
		if !ok {
			return 0, Errorf(EMISSINGVAR, "prompt variable %q not supplied", tag)
		}
		return io.WriteString(w, v)
	})
}

// PromptSet holds the two templates the conversation uses.
type PromptSet struct {
	IntentAnalysis     PromptTemplate `yaml:"intent_analysis" json:"intentAnalysis"`
	ResponseGeneration PromptTemplate `yaml:"response_generation" json:"responseGeneration"`
}

// Validate returns an error if a template is empty or references a
// variable its step never supplies.
func (s *PromptSet) Validate() error {
	if err := validateTemplate("intent_analysis", s.IntentAnalysis, VarQuestion, VarHistory); err != nil {
		return err
	}
	return validateTemplate("response_generation", s.ResponseGeneration, VarQuestion, VarContext, VarHistory)
}

func validateTemplate(name string, t PromptTemplate, allowed ...string) error {
	if t.Human == "" {
		return Errorf(EINVALID, "%s: human template required", name)
	}
	for _, v := range t.Placeholders() {
		if !slices.Contains(allowed, v) {
			return Errorf(EMISSINGVAR, "%s: unknown prompt variable %q", name, v)
		}
	}
	if !slices.Contains(t.Placeholders(), VarQuestion) {
		return Errorf(EINVALID, "%s: template must reference {%s}", name, VarQuestion)
	}
	return nil
}
