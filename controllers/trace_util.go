package controllers

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"paidpiper.com/nonce-gateway/common"
)

// spanFromRequest starts a child of the server span already carried by the
// request context.
func spanFromRequest(r *http.Request, spanName string) (context.Context, trace.Span) {
	tracer := common.CreateTracer("nonce-gateway/controller")

	return tracer.Start(r.Context(), spanName, trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", r.URL.Path),
	))
}
