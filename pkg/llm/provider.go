package llm

import "context"

// Provider is the generation backend contract: one prompt in, one
// completion out. Calls are synchronous but slow; callers keep them off
// the hot request path.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Options carry the fixed decoding parameters of the system.
type Options struct {
	Temperature float64
	NumCtx      int
	NumThread   int
}

type Option func(*Options)

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

func WithNumCtx(n int) Option {
	return func(o *Options) { o.NumCtx = n }
}

func WithNumThread(n int) Option {
	return func(o *Options) { o.NumThread = n }
}
