// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform sends packed batch text to a language model and returns
// its raw structured output together with the estimated cost of the call.
package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/textcompile/internal/errlog"
	"github.com/pdiddy/textcompile/pkg/types"
)

// ErrTransform marks a failed model call. The adapter absorbs it; it only
// appears in the error log and progress output.
var ErrTransform = errors.New("transform failed")

// DefaultPricing holds the per-thousand-token rates used when none are
// configured.
var DefaultPricing = types.Pricing{InputPer1K: 0.001, OutputPer1K: 0.002}

// Adapter renders the prompt, calls the backend, and prices the reply.
// Failures are logged and turned into an empty, zero-cost result so a bad
// batch never stops the run.
type Adapter struct {
	backend Backend
	prompt  *Prompt
	pricing types.Pricing
	log     *errlog.Log
	w       io.Writer
}

// NewAdapter returns an Adapter. A zero pricing selects DefaultPricing; a
// nil log discards failures.
func NewAdapter(backend Backend, prompt *Prompt, pricing types.Pricing, log *errlog.Log, w io.Writer) *Adapter {
	if pricing == (types.Pricing{}) {
		pricing = DefaultPricing
	}
	if log == nil {
		log = errlog.Discard()
	}
	if w == nil {
		w = io.Discard
	}
	return &Adapter{backend: backend, prompt: prompt, pricing: pricing, log: log, w: w}
}

// Transform returns the model output for one batch's text.
func (a *Adapter) Transform(ctx context.Context, text string) types.TransformResult {
	prompt, err := a.prompt.Render(text)
	if err != nil {
		a.fail("rendering prompt", err, len(text))
		return types.TransformResult{}
	}

	c, err := a.backend.Complete(ctx, prompt)
	if err != nil {
		a.fail("completion failed", err, len(text))
		return types.TransformResult{}
	}

	return types.TransformResult{
		Output:           c.Text,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		Cost:             a.pricing.Cost(c.PromptTokens, c.CompletionTokens),
	}
}

func (a *Adapter) fail(msg string, err error, n int) {
	err = fmt.Errorf("%w: %s: %w", ErrTransform, msg, err)
	a.log.Failure(msg, err, "chars", n)
	fmt.Fprintf(a.w, "failed  transform: %s\n", strings.ReplaceAll(err.Error(), "\n", " "))
}
