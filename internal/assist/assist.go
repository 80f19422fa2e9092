// Package assist generates code descriptions and inline comments with a
// chat completion model.
package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/codedrop/internal/llm"
)

// Token limits used when the caller leaves Options zero.
const (
	DefaultDescribeMaxTokens = 200
	DefaultAnnotateMaxTokens = 2000
)

const (
	describeSystemPrompt = "You are a technical writer. Analyze the Python code and provide a clear, concise description of what it does."
	describeUserPrefix   = "Here's the Python code to analyze:\n\n"

	annotateSystemPrompt = "You are a Python expert. Add descriptive comments to the code without changing the code itself. The output should only be the code with comments, without embedded marking, without any additional explanations."
	annotateUserPrefix   = "Here's the Python code to comment:\n\n"
)

// Completer is the subset of llm.Client used here.
type Completer interface {
	Complete(ctx context.Context, request llm.Request) (*llm.Response, error)
}

// Options tunes generation.
type Options struct {
	Model             string
	DescribeMaxTokens int
	AnnotateMaxTokens int
}

// Assistant implements description and annotation over a Completer.
type Assistant struct {
	completer Completer
	options   Options
	logger    *slog.Logger
}

// New returns an Assistant. Zero option fields take package defaults.
func New(completer Completer, options Options, logger *slog.Logger) *Assistant {
	if options.DescribeMaxTokens <= 0 {
		options.DescribeMaxTokens = DefaultDescribeMaxTokens
	}
	if options.AnnotateMaxTokens <= 0 {
		options.AnnotateMaxTokens = DefaultAnnotateMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{completer: completer, options: options, logger: logger}
}

// Describe returns a short natural-language summary of source.
func (a *Assistant) Describe(ctx context.Context, source string) (string, error) {
	text, err := a.complete(ctx, describeSystemPrompt, describeUserPrefix+source, a.options.DescribeMaxTokens)
	if err != nil {
		return "", fmt.Errorf("describe: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("describe: model returned empty text")
	}
	return text, nil
}

// Annotate returns source with descriptive comments added. Markdown code
// fences around the model output are removed.
func (a *Assistant) Annotate(ctx context.Context, source string) (string, error) {
	text, err := a.complete(ctx, annotateSystemPrompt, annotateUserPrefix+source, a.options.AnnotateMaxTokens)
	if err != nil {
		return "", fmt.Errorf("annotate: %w", err)
	}
	text = StripFences(text)
	if text == "" {
		return "", fmt.Errorf("annotate: model returned empty text")
	}
	return text, nil
}

func (a *Assistant) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	response, err := a.completer.Complete(ctx, llm.Request{
		Model:     a.options.Model,
		System:    system,
		Messages:  []llm.Message{llm.UserMessage(user)},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if response.FinishReason == "length" {
		a.logger.Warn("model output truncated", "max_tokens", maxTokens)
	}
	return strings.TrimSpace(response.Text), nil
}

// StripFences removes a single surrounding markdown code fence, including
// any info string such as ```python. Text without a leading fence is
// returned trimmed and otherwise unchanged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	newline := strings.IndexByte(text, '\n')
	if newline < 0 {
		return strings.TrimSpace(strings.Trim(text, "`"))
	}
	body := text[newline+1:]

	body = strings.TrimRight(body, " \t\r\n")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimRight(body, " \t\r\n")
}
