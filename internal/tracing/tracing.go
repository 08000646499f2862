// Package tracing richtet OpenTelemetry für ausgehende Basecamp Requests ein.
//
// Spans werden nur exportiert, wenn OTEL_EXPORTER_OTLP_ENDPOINT gesetzt ist,
// sonst läuft ein No-op Provider.
package tracing

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"hufschlaeger.net/basecamp-cardtables/internal/logger"
)

const (
	serviceName = "basecamp-cardtables"
	tracerName  = "basecamp-client"
)

var (
	initOnce       sync.Once
	tracerProvider trace.TracerProvider = noop.NewTracerProvider()
	sdkProvider    *sdktrace.TracerProvider
)

func initTracing() {
	provider, err := newProvider(context.Background())
	if err != nil {
		logger.Default().Warn("OTLP Exporter nicht verfügbar, Tracing bleibt aus", zap.Error(err))
		return
	}
	if provider == nil {
		return
	}

	sdkProvider = provider
	tracerProvider = provider
	otel.SetTracerProvider(tracerProvider)
}

// newProvider baut den SDK Provider. Endpoint, Pfad, TLS und Header liest otlptracehttp
// selbst aus OTEL_EXPORTER_OTLP_*; ohne Endpoint gibt es keinen Provider.
func newProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" && os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func Tracer() trace.Tracer {
	initOnce.Do(initTracing)
	return tracerProvider.Tracer(tracerName)
}

// Shutdown schreibt ausstehende Spans raus.
func Shutdown(ctx context.Context) error {
	if sdkProvider != nil {
		return sdkProvider.Shutdown(ctx)
	}
	return nil
}

// TraceHTTPRequest startet einen Client-Span pro API-Aufruf, beenden muss ihn der Aufrufer.
func TraceHTTPRequest(ctx context.Context, method, path, requestID string) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "basecamp "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		attribute.String("url.path", path),
		attribute.String("request_id", requestID),
	)
	return ctx, span
}

// TraceHTTPResponse hält das Ergebnis am Span fest.
func TraceHTTPResponse(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
