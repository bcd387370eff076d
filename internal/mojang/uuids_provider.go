package mojang

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
)

type MojangApiUuidsProviderFunc func(ctx context.Context, username string) (*ProfileInfo, error)

func NewMojangApiUuidsProvider(endpoint MojangApiUuidsProviderFunc) (*MojangApiUuidsProvider, error) {
	metrics, err := newMojangApiUuidsProviderMetrics(otel.GetMeterProvider().Meter(ScopeName))
	if err != nil {
		return nil, err
	}

	return &MojangApiUuidsProvider{
		MojangApiUuidsEndpoint: endpoint,
		metrics:                metrics,
	}, nil
}

type MojangApiUuidsProvider struct {
	MojangApiUuidsEndpoint MojangApiUuidsProviderFunc
	metrics                *mojangApiUuidsProviderMetrics
}

func (p *MojangApiUuidsProvider) GetUuid(ctx context.Context, username string) (*ProfileInfo, error) {
	p.metrics.Requests.Add(ctx, 1)

	return p.MojangApiUuidsEndpoint(ctx, username)
}

func newMojangApiUuidsProviderMetrics(meter metric.Meter) (*mojangApiUuidsProviderMetrics, error) {
	m := &mojangApiUuidsProviderMetrics{}
	var errors, err error

	m.Requests, err = meter.Int64Counter(
		"uuids.request.sent",
		metric.WithDescription("Number of username to uuid requests sent to Mojang API"),
		metric.WithUnit("1"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type mojangApiUuidsProviderMetrics struct {
	Requests metric.Int64Counter
}
