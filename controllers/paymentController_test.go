package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"paidpiper.com/nonce-gateway/resultslot"
	"paidpiper.com/nonce-gateway/router"
	"paidpiper.com/nonce-gateway/sdk"
	"paidpiper.com/nonce-gateway/sdk/fakesdk"
	"paidpiper.com/nonce-gateway/session"
)

type sandboxUI struct{}

func (sandboxUI) Name() string { return "sandbox" }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	client := fakesdk.NewClient("invalid")
	client.AutoRespond = true
	sess := session.New(client, session.UIProviderFunc(func() sdk.UIContext { return sandboxUI{} }), "")
	r := router.New(sess, resultslot.NewStore(resultslot.Options{}), router.Options{})
	c := NewPaymentController(r, session.NewHTTPFetcher(time.Second), session.StaticToken("sandbox_default"))

	srv := httptest.NewServer(NewHandler(c))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (int, map[string]interface{}) {
	t.Helper()
	res, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestSetupAndTokenize(t *testing.T) {
	srv := newTestServer(t)

	status, body := post(t, srv, "/api/session/setup", `{"clientToken":"sandbox_token"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["sessionId"])

	status, body = post(t, srv, "/api/card/nonce", `{"number":"4111111111111111","cvv":"123"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "card", body["type"])
	assert.Equal(t, "Visa", body["cardType"])
	assert.Equal(t, "1111", body["lastFour"])
	assert.NotContains(t, body, "billingAddress")
}

func TestDeclinedCardReportsFields(t *testing.T) {
	srv := newTestServer(t)
	status, _ := post(t, srv, "/api/session/setup", ``)
	require.Equal(t, http.StatusOK, status)

	status, body := post(t, srv, "/api/card/nonce", `{"number":"`+fakesdk.DeclinedCardNumber+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	e := body["error"].(map[string]interface{})
	assert.Equal(t, "field_validation", e["kind"])
	assert.Equal(t, map[string]interface{}{"card_number": "Credit card number is invalid"}, e["fields"])
}

func TestSetupWithInvalidToken(t *testing.T) {
	srv := newTestServer(t)
	status, body := post(t, srv, "/api/session/setup", `{"clientToken":"invalid"}`)
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "setup_error", body["error"].(map[string]interface{})["kind"])

	status, _ = post(t, srv, "/api/paypal/one-time", `{"amount":"10","currencyCode":"USD"}`)
	assert.Equal(t, http.StatusPreconditionFailed, status)
}

func TestDeviceDataAndReadiness(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session/setup", `{"clientToken":"sandbox_token"}`)

	status, body := post(t, srv, "/api/devicedata", `{"dataCollector":"unknown"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Invalid data collector", body["error"].(map[string]interface{})["message"])

	status, body = post(t, srv, "/api/devicedata", `{"dataCollector":"paypal"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["deviceData"], "correlation_id")

	res, err := http.Get(srv.URL + "/api/googlepay/ready")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
}

func TestThreeDSecureRejectsUnshifted(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session/setup", `{"clientToken":"sandbox_token"}`)

	status, body := post(t, srv, "/api/threedsecure/verify", `{"nonce":"`+fakesdk.UnshiftedNonce+`","amount":"10"}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, router.LiabilityNotShifted, body["error"].(map[string]interface{})["message"])

	status, body = post(t, srv, "/api/threedsecure/verify", `{"nonce":"card-nonce","amount":"10"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "card", body["type"])
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session/setup", `{"clientToken":"sandbox_token"}`)
	post(t, srv, "/api/googlepay/nonce", `{"totalPrice":"5","currencyCode":"USD"}`)

	res, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	defer res.Body.Close()

	out := &statusResponse{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	assert.True(t, out.SessionReady)
	assert.Zero(t, out.Pending)
	require.NotEmpty(t, out.TopOperations)
	assert.Equal(t, string(router.OpGooglePay), out.TopOperations[0].Operation)
}

func TestExpiredRequestReleasesPendingEntry(t *testing.T) {
	client := fakesdk.NewClient()
	sess := session.New(client, session.UIProviderFunc(func() sdk.UIContext { return sandboxUI{} }), "")
	r := router.New(sess, resultslot.NewStore(resultslot.Options{}), router.Options{})
	sess.Setup(context.Background(), session.StaticToken("sandbox_token"), nil, nil)
	c := NewPaymentController(r, session.NewHTTPFetcher(time.Second), session.StaticToken("sandbox_default"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/card/nonce", strings.NewReader(`{"number":"4111111111111111"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()

	c.TokenizeCard()(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Zero(t, r.PendingCount())

	// the late nonce finds nothing to resolve
	ticket := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, ticket)
	client.Last().FireNonce(ticket, &sdk.CardNonce{Token: "late"})
	assert.Zero(t, r.PendingCount())
}

func TestControllerSpanIsChildOfServerSpan(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	client := fakesdk.NewClient()
	sess := session.New(client, session.UIProviderFunc(func() sdk.UIContext { return sandboxUI{} }), "")
	r := router.New(sess, resultslot.NewStore(resultslot.Options{}), router.Options{})
	handler := NewHandler(NewPaymentController(r, session.NewHTTPFetcher(time.Second), session.StaticToken("sandbox_default")))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range spans.Ended() {
		byName[span.Name()] = span
	}
	server, ok := byName["nonce-gateway"]
	require.True(t, ok)
	controller, ok := byName["requesthandler:Status"]
	require.True(t, ok)

	assert.Equal(t, server.SpanContext().TraceID(), controller.SpanContext().TraceID())
	assert.Equal(t, server.SpanContext().SpanID(), controller.Parent().SpanID())
}
