// Package assist is the boundary to the hosted text and vision model.
// Callers never see its errors: a failed or slow call means no enrichment.
package assist

import (
	"context"
	"log/slog"
	"time"
)

// ProductDraft is what image analysis suggests for a new catalog line.
type ProductDraft struct {
	Name        string   `json:"name"`
	NameBn      string   `json:"name_bn"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Tags        []string `json:"tags"`
}

// AdRequest describes the product an ad is written for.
type AdRequest struct {
	ProductName string
	Price       int64
	ShopName    string
	Offer       string
}

type Enricher interface {
	AnalyzeImage(ctx context.Context, image []byte) (*ProductDraft, error)
	AdCopy(ctx context.Context, req AdRequest) (string, error)
	VoiceGuidance(ctx context.Context, contextText string) (string, error)
}

// Nop is used when no model is configured.
type Nop struct{}

func (Nop) AnalyzeImage(context.Context, []byte) (*ProductDraft, error) { return nil, nil }
func (Nop) AdCopy(context.Context, AdRequest) (string, error)           { return "", nil }
func (Nop) VoiceGuidance(context.Context, string) (string, error)       { return "", nil }

// Guarded bounds every call by a timeout and turns failures into empty results.
type Guarded struct {
	next    Enricher
	timeout time.Duration
	log     *slog.Logger
}

func WithTimeout(next Enricher, timeout time.Duration, log *slog.Logger) *Guarded {
	if next == nil {
		next = Nop{}
	}
	return &Guarded{next: next, timeout: timeout, log: log}
}

func (g *Guarded) AnalyzeImage(ctx context.Context, image []byte) *ProductDraft {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	draft, err := call(ctx, func(ctx context.Context) (*ProductDraft, error) { return g.next.AnalyzeImage(ctx, image) })
	if err != nil {
		g.log.Warn("image analysis skipped", "error", err)
		return nil
	}
	return draft
}

func (g *Guarded) AdCopy(ctx context.Context, req AdRequest) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := call(ctx, func(ctx context.Context) (string, error) { return g.next.AdCopy(ctx, req) })
	if err != nil {
		g.log.Warn("ad copy skipped", "error", err, "product", req.ProductName)
		return ""
	}
	return text
}

func (g *Guarded) VoiceGuidance(ctx context.Context, contextText string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := call(ctx, func(ctx context.Context) (string, error) { return g.next.VoiceGuidance(ctx, contextText) })
	if err != nil {
		g.log.Warn("voice guidance skipped", "error", err)
		return ""
	}
	return text
}

// call runs fn and gives up when ctx ends, even if fn ignores ctx.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
