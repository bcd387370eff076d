package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/textures/internal/textures"
)

// Chain consults its members one by one in the construction order and returns the first found texture.
// Members' errors are logged and never reach the caller, so an exhausted chain always reports an empty result
type Chain struct {
	retrievers []Retriever
	metrics    *chainMetrics
}

func NewChain(retrievers ...Retriever) (*Chain, error) {
	metrics, err := newChainMetrics(otel.GetMeterProvider().Meter(ScopeName))
	if err != nil {
		return nil, err
	}

	return &Chain{
		retrievers: append([]Retriever(nil), retrievers...),
		metrics:    metrics,
	}, nil
}

func (c *Chain) GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error) {
	return firstFound(ctx, c, "GetTexture", &kind, func(r Retriever) (*textures.RetrievedTexture, error) {
		return r.GetTexture(ctx, user, kind)
	}), nil
}

func (c *Chain) GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	return firstFound(ctx, c, "GetTextureBytes", &kind, func(r Retriever) (*textures.RetrievedTextureBytes, error) {
		return r.GetTextureBytes(ctx, user, kind)
	}), nil
}

func (c *Chain) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	return firstFound(ctx, c, "GetTextureBytesByDigest", nil, func(r Retriever) (*textures.RetrievedTextureBytes, error) {
		return r.GetTextureBytesByDigest(ctx, digest)
	}), nil
}

func (c *Chain) GetTextureBytesByUsername(ctx context.Context, username string, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	return firstFound(ctx, c, "GetTextureBytesByUsername", &kind, func(r Retriever) (*textures.RetrievedTextureBytes, error) {
		return r.GetTextureBytesByUsername(ctx, username, kind)
	}), nil
}

func (c *Chain) SupportsKind(kind textures.Kind) bool {
	for _, retriever := range c.retrievers {
		if retriever.SupportsKind(kind) {
			return true
		}
	}

	return false
}

// kind is nil for the operations that aren't scoped to a texture kind
func firstFound[T any](
	ctx context.Context,
	c *Chain,
	operation string,
	kind *textures.Kind,
	call func(r Retriever) (*T, error),
) *T {
	for i, retriever := range c.retrievers {
		if kind != nil && !retriever.SupportsKind(*kind) {
			continue
		}

		result, err := call(retriever)
		if err != nil {
			retrieverType := fmt.Sprintf("%T", retriever)
			slog.WarnContext(
				ctx,
				"Retriever failed, trying the next one",
				slog.String("operation", operation),
				slog.Int("position", i),
				slog.String("retriever", retrieverType),
				slog.Any("error", err),
			)
			c.metrics.Failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", operation),
				attribute.String("retriever", retrieverType),
			))

			continue
		}

		if result != nil {
			return result
		}
	}

	c.metrics.Exhausted.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))

	return nil
}

func newChainMetrics(meter metric.Meter) (*chainMetrics, error) {
	m := &chainMetrics{}
	var errors, err error

	m.Failures, err = meter.Int64Counter(
		"chain.retriever.failed",
		metric.WithDescription("Number of chain members that couldn't be consulted"),
		metric.WithUnit("1"),
	)
	errors = multierr.Append(errors, err)

	m.Exhausted, err = meter.Int64Counter(
		"chain.exhausted",
		metric.WithDescription("Number of chain lookups that found nothing"),
		metric.WithUnit("1"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type chainMetrics struct {
	Failures  metric.Int64Counter
	Exhausted metric.Int64Counter
}
