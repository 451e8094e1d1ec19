package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/router"
	"paidpiper.com/nonce-gateway/session"
)

type PaymentController struct {
	router  *router.Router
	fetcher session.Fetcher
	// credential is used when a setup request names no token or url.
	credential session.CredentialSource
}

func NewPaymentController(r *router.Router, fetcher session.Fetcher, credential session.CredentialSource) *PaymentController {
	return &PaymentController{
		router:     r,
		fetcher:    fetcher,
		credential: credential,
	}
}

type setupRequest struct {
	ClientToken    string `json:"clientToken"`
	ClientTokenURL string `json:"clientTokenUrl"`
}

type result struct {
	data interface{}
	err  *models.CanonicalError
}

// pending adapts continuations onto a channel that receives the first result.
type pending chan result

func newPending() pending {
	return make(pending, 1)
}

func (p pending) succeed(v interface{}) {
	select {
	case p <- result{data: v}:
	default:
		log.Warn("second result for a single-shot operation dropped")
	}
}

func (p pending) fail(err *models.CanonicalError) {
	select {
	case p <- result{err: err}:
	default:
		log.Warn("second result for a single-shot operation dropped")
	}
}

func (p pending) await(ctx context.Context) ResponseMessage {
	select {
	case res := <-p:
		if res.err != nil {
			return ErrorMessage(res.err)
		}
		return MessageWithData(http.StatusOK, res.data)
	case <-ctx.Done():
		return MessageWithStatus(http.StatusGatewayTimeout, "operation still pending: "+ctx.Err().Error())
	}
}

func nonceCallbacks(p pending) (func(models.NonceResult), func(*models.CanonicalError)) {
	return func(n models.NonceResult) { p.succeed(n) }, p.fail
}

func decodeFields(r *http.Request) (models.Fields, error) {
	fields := models.Fields{}
	err := json.NewDecoder(r.Body).Decode(&fields)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fields, nil
}

func (c *PaymentController) Setup(w http.ResponseWriter, r *http.Request) {
	ctx, span := spanFromRequest(r, "requesthandler:Setup")
	defer span.End()

	req := &setupRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		log.Errorf("Error decoding setup request: %v", err)
		Respond(w, MessageWithStatus(http.StatusBadRequest, "Invalid request"))
		return
	}

	var src session.CredentialSource
	switch {
	case strings.TrimSpace(req.ClientToken) != "":
		src = session.StaticToken(req.ClientToken)
	case req.ClientTokenURL != "":
		src = session.RemoteToken{URL: req.ClientTokenURL, Fetcher: c.fetcher}
	default:
		src = c.credential
	}

	p := newPending()
	c.router.Setup(ctx, src, func(string) {
		p.succeed(map[string]interface{}{"sessionId": c.router.Session().ID()})
	}, p.fail)

	Respond(w, p.await(ctx))
}

func (c *PaymentController) operation(name string, start func(ctx context.Context, fields models.Fields, p pending) router.Ticket) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := spanFromRequest(r, "requesthandler:"+name)
		defer span.End()

		fields, err := decodeFields(r)
		if err != nil {
			log.Errorf("Error decoding %s request: %v", name, err)
			Respond(w, MessageWithStatus(http.StatusBadRequest, "Invalid request"))
			return
		}

		p := newPending()
		ticket := start(ctx, fields, p)
		span.SetAttributes(attribute.String("request.id", ticket.String()))
		w.Header().Set("X-Request-Id", ticket.String())

		res := p.await(ctx)
		if ctx.Err() != nil && c.router.Abandon(ticket) {
			log.WithFields(log.Fields{"request": ticket.String(), "operation": name}).Warn("caller gone, pending operation abandoned")
		}
		Respond(w, res)
	}
}

func (c *PaymentController) TokenizeCard() http.HandlerFunc {
	return c.operation("TokenizeCard", func(ctx context.Context, fields models.Fields, p pending) router.Ticket {
		onSuccess, onError := nonceCallbacks(p)
		return c.router.TokenizeCard(ctx, fields, onSuccess, onError)
	})
}

func (c *PaymentController) PayPalOneTime() http.HandlerFunc {
	return c.operation("PayPalOneTime", func(ctx context.Context, fields models.Fields, p pending) router.Ticket {
		onSuccess, onError := nonceCallbacks(p)
		return c.router.RequestPayPalOneTime(ctx, fields, onSuccess, onError)
	})
}

func (c *PaymentController) PayPalBillingAgreement() http.HandlerFunc {
	return c.operation("PayPalBillingAgreement", func(ctx context.Context, fields models.Fields, p pending) router.Ticket {
		onSuccess, onError := nonceCallbacks(p)
		return c.router.RequestPayPalBillingAgreement(ctx, fields, onSuccess, onError)
	})
}

func (c *PaymentController) GooglePayReady() http.HandlerFunc {
	return c.operation("GooglePayReady", func(ctx context.Context, _ models.Fields, p pending) router.Ticket {
		return c.router.IsReadyToPay(ctx, func(ready bool) {
			p.succeed(map[string]interface{}{"ready": ready})
		}, p.fail)
	})
}

func (c *PaymentController) GooglePay() http.HandlerFunc {
	return c.operation("GooglePay", func(ctx context.Context, fields models.Fields, p pending) router.Ticket {
		onSuccess, onError := nonceCallbacks(p)
		return c.router.RequestGooglePay(ctx, fields, onSuccess, onError)
	})
}

func (c *PaymentController) ThreeDSecure() http.HandlerFunc {
	return c.operation("ThreeDSecure", func(ctx context.Context, fields models.Fields, p pending) router.Ticket {
		onSuccess, onError := nonceCallbacks(p)
		return c.router.VerifyThreeDSecure(ctx, fields, onSuccess, onError)
	})
}

func (c *PaymentController) DeviceData() http.HandlerFunc {
	return c.operation("DeviceData", func(ctx context.Context, fields models.Fields, p pending) router.Ticket {
		return c.router.CollectDeviceData(ctx, fields, func(data string) {
			p.succeed(map[string]interface{}{"deviceData": data})
		}, p.fail)
	})
}

type statusResponse struct {
	SessionReady  bool                    `json:"sessionReady"`
	SessionID     string                  `json:"sessionId,omitempty"`
	Pending       int                     `json:"pending"`
	TopOperations []router.OperationCount `json:"topOperations"`
}

func (c *PaymentController) Status(w http.ResponseWriter, r *http.Request) {
	_, span := spanFromRequest(r, "requesthandler:Status")
	defer span.End()

	sess := c.router.Session()
	Respond(w, &statusResponse{
		SessionReady:  sess.Ready(),
		SessionID:     sess.ID(),
		Pending:       c.router.PendingCount(),
		TopOperations: c.router.TopOperations(),
	})
}
