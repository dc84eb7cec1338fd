package ai

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"rag-chatbot-platform/internal/logger"
)

// resilientGateway wraps a provider with a circuit breaker and a client-side
// rate limiter. It never retries: a failed call surfaces immediately so the
// caller can degrade.
type resilientGateway struct {
	inner   Gateway
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func newResilientGateway(name string, inner Gateway) *resilientGateway {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("AI circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// Generous default: 10 calls/sec with small bursts. Provider quotas
	// are enforced server-side; this only smooths ingestion spikes.
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &resilientGateway{inner: inner, breaker: breaker, limiter: limiter}
}

func (g *resilientGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("ai-gateway")
	ctx, span := tracer.Start(ctx, "ai.embed")
	defer span.End()
	span.SetAttributes(attribute.Int("ai.text_length", len(text)))

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Embed(ctx, text)
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("ai.failed", true))
		return nil, err
	}
	return result.([]float32), nil
}

func (g *resilientGateway) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	tracer := otel.Tracer("ai-gateway")
	ctx, span := tracer.Start(ctx, "ai.complete")
	defer span.End()
	span.SetAttributes(attribute.Int("ai.message_count", len(messages)))

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Complete(ctx, messages, maxTokens, temperature)
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("ai.failed", true))
		return "", err
	}
	return result.(string), nil
}
