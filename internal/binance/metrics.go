package binance

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/driftline/binancefutures/errs"
)

type connectorMetrics struct {
	network string

	framesHandled  metric.Int64Counter
	framesDropped  metric.Int64Counter
	reconnects     metric.Int64Counter
	subscribeSends metric.Int64Counter
	restFailures   metric.Int64Counter
}

func newConnectorMetrics(network string) *connectorMetrics {
	meter := otel.Meter("connector.binance")

	cm := &connectorMetrics{
		network:        network,
		framesHandled:  nil,
		framesDropped:  nil,
		reconnects:     nil,
		subscribeSends: nil,
		restFailures:   nil,
	}

	cm.framesHandled, _ = meter.Int64Counter("binance_futures_stream_frames_handled",
		metric.WithDescription("Book-ticker frames decoded and applied to the price cache"),
		metric.WithUnit("{frame}"))

	cm.framesDropped, _ = meter.Int64Counter("binance_futures_stream_frames_dropped",
		metric.WithDescription("Stream frames discarded because they could not be decoded"),
		metric.WithUnit("{frame}"))

	cm.reconnects, _ = meter.Int64Counter("binance_futures_stream_reconnects",
		metric.WithDescription("Websocket connections established, including the first"),
		metric.WithUnit("{connect}"))

	cm.subscribeSends, _ = meter.Int64Counter("binance_futures_stream_subscribe_requests",
		metric.WithDescription("SUBSCRIBE requests sent over the market-data websocket"),
		metric.WithUnit("{request}"))

	cm.restFailures, _ = meter.Int64Counter("binance_futures_rest_failures",
		metric.WithDescription("REST calls that returned a failure envelope"),
		metric.WithUnit("{failure}"))

	return cm
}

func (cm *connectorMetrics) baseAttrs() []attribute.KeyValue {
	if cm == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String("exchange", exchangeName),
		attribute.String("network", cm.network),
	}
}

func (cm *connectorMetrics) frameHandled() {
	if cm == nil || cm.framesHandled == nil {
		return
	}
	cm.framesHandled.Add(context.Background(), 1, metric.WithAttributes(cm.baseAttrs()...))
}

func (cm *connectorMetrics) frameDropped() {
	if cm == nil || cm.framesDropped == nil {
		return
	}
	cm.framesDropped.Add(context.Background(), 1, metric.WithAttributes(cm.baseAttrs()...))
}

func (cm *connectorMetrics) reconnect() {
	if cm == nil || cm.reconnects == nil {
		return
	}
	cm.reconnects.Add(context.Background(), 1, metric.WithAttributes(cm.baseAttrs()...))
}

func (cm *connectorMetrics) subscribeSent() {
	if cm == nil || cm.subscribeSends == nil {
		return
	}
	cm.subscribeSends.Add(context.Background(), 1, metric.WithAttributes(cm.baseAttrs()...))
}

func (cm *connectorMetrics) restFailure(e *errs.E) {
	if cm == nil || cm.restFailures == nil || e == nil {
		return
	}
	attrs := cm.baseAttrs()
	if e.Endpoint != "" {
		attrs = append(attrs, attribute.String("endpoint", e.Endpoint))
	}
	if e.Code != "" {
		attrs = append(attrs, attribute.String("code", string(e.Code)))
	}
	cm.restFailures.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
