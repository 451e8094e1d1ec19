// Package router exposes one entry point per payment flow and delivers each
// operation's single terminal result through its continuations.
package router

import (
	"context"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paidpiper.com/nonce-gateway/common"
	"paidpiper.com/nonce-gateway/errortranslator"
	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/normalizer"
	"paidpiper.com/nonce-gateway/resultslot"
	"paidpiper.com/nonce-gateway/sdk"
	"paidpiper.com/nonce-gateway/session"
)

const (
	LiabilityNotShifted = "3D Secure liability did not shift to the issuer"
	UnexpectedResult    = "unexpected result type"
)

type OutcomeObserver interface {
	Observe(outcome models.Outcome)
}

type Options struct {
	GooglePayMerchantID string
	Observer            OutcomeObserver
}

type Router struct {
	session    *session.Session
	store      *resultslot.Store
	tracer     trace.Tracer
	observer   OutcomeObserver
	merchantID string
	stats      *operationStats
}

// New binds the router as the session's event sink.
func New(sess *session.Session, store *resultslot.Store, opts Options) *Router {
	r := &Router{
		session:    sess,
		store:      store,
		tracer:     common.CreateTracer("nonce-gateway/router"),
		observer:   opts.Observer,
		merchantID: opts.GooglePayMerchantID,
		stats:      newOperationStats(),
	}
	sess.Bind(r)
	return r
}

// Setup (re)creates the payment session.
func (r *Router) Setup(ctx context.Context, src session.CredentialSource, onSuccess func(credential string), onError func(*models.CanonicalError)) {
	ctx, span := r.tracer.Start(ctx, string(OpSetup))
	defer span.End()

	r.session.Setup(ctx, src, onSuccess, func(err *models.CanonicalError) {
		span.SetStatus(codes.Error, err.Error())
		if onError != nil {
			onError(err)
		}
	})
}

func (r *Router) TokenizeCard(ctx context.Context, fields models.Fields, onSuccess func(models.NonceResult), onError func(*models.CanonicalError)) Ticket {
	req := models.NewCardRequest(fields)
	return r.submit(ctx, OpTokenizeCard, false, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.TokenizeCard(id, req)
	})
}

func (r *Router) RequestPayPalOneTime(ctx context.Context, fields models.Fields, onSuccess func(models.NonceResult), onError func(*models.CanonicalError)) Ticket {
	req := models.NewPayPalOneTimeRequest(fields)
	return r.submit(ctx, OpPayPalOneTime, false, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.RequestPayPalOneTime(id, req)
	})
}

func (r *Router) RequestPayPalBillingAgreement(ctx context.Context, fields models.Fields, onSuccess func(models.NonceResult), onError func(*models.CanonicalError)) Ticket {
	req := models.NewPayPalBillingAgreementRequest(fields)
	return r.submit(ctx, OpPayPalBillingAgreement, false, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.RequestPayPalBillingAgreement(id, req)
	})
}

func (r *Router) IsReadyToPay(ctx context.Context, onSuccess func(ready bool), onError func(*models.CanonicalError)) Ticket {
	return r.submit(ctx, OpGooglePayReady, true, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.IsReadyToPay(id, func(ready bool) {
			r.respond(id, ready)
		})
	})
}

func (r *Router) RequestGooglePay(ctx context.Context, fields models.Fields, onSuccess func(models.NonceResult), onError func(*models.CanonicalError)) Ticket {
	req := models.NewGooglePayRequest(fields, r.merchantID)
	return r.submit(ctx, OpGooglePay, false, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.RequestGooglePay(id, req)
	})
}

// VerifyThreeDSecure accepts the resulting nonce only when liability shifted.
func (r *Router) VerifyThreeDSecure(ctx context.Context, fields models.Fields, onSuccess func(models.NonceResult), onError func(*models.CanonicalError)) Ticket {
	req := models.NewThreeDSecureRequest(fields)
	return r.submit(ctx, OpThreeDSecure, false, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.PerformThreeDSecureVerification(id, req)
	})
}

// CollectDeviceData fails with InvalidInput, without reaching the SDK, when
// the collector kind is missing or unknown.
func (r *Router) CollectDeviceData(ctx context.Context, fields models.Fields, onSuccess func(deviceData string), onError func(*models.CanonicalError)) Ticket {
	kind, ok := models.ParseCollectorKind(fields)
	if !ok {
		id := Ticket(xid.New().String())
		r.fail(id, OpDeviceData, onError, models.InvalidInput(models.InvalidDataCollector))
		return id
	}
	return r.submit(ctx, OpDeviceData, true, typed(onSuccess), onError, func(h sdk.Handle, id string) error {
		return h.CollectDeviceData(id, kind.UsesPayPalCollector(), func(deviceData string) {
			r.respond(id, deviceData)
		})
	})
}

// TopOperations reports the most requested operations, most frequent first.
func (r *Router) TopOperations() []OperationCount {
	return r.stats.top()
}

// Abandon rejects the ticket's pending entry once its caller stops waiting.
func (r *Router) Abandon(t Ticket) bool {
	return r.store.Expire(t.String())
}

func (r *Router) Session() *session.Session {
	return r.session
}

func (r *Router) PendingCount() int {
	return r.store.Len()
}

// submit opens the pending entry and hands the request to the SDK. Dedicated
// operations are answered through their own callback rather than the session
// listeners, so they are always matched by id.
func (r *Router) submit(ctx context.Context, op Operation, dedicated bool, onSuccess func(interface{}) *models.CanonicalError, onError func(*models.CanonicalError), send func(h sdk.Handle, id string) error) Ticket {
	id := xid.New().String()
	_, span := r.tracer.Start(ctx, string(op), trace.WithAttributes(
		attribute.String("request.id", id),
		attribute.String("dispatch.mode", r.store.Mode().String()),
	))
	defer span.End()

	r.stats.record(op)

	handle, err := r.session.Handle()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.fail(Ticket(id), op, onError, models.SetupFailed(err.Error()))
		return Ticket(id)
	}

	sessionID := r.session.ID()
	displaced := r.store.Open(resultslot.Pending{
		ID:        id,
		Operation: string(op),
		Dedicated: dedicated,
		Success: func(v interface{}) {
			if cause := onSuccess(v); cause != nil {
				log.WithFields(log.Fields{"request": id, "operation": op}).Warnf("Result of type %T rejected", v)
				r.observe(id, op, sessionID, models.OutcomeFailed, nil, cause.Kind)
				if onError != nil {
					onError(cause)
				}
				return
			}
			r.observe(id, op, sessionID, models.OutcomeSucceeded, v, "")
		},
		Failure: func(cause *models.CanonicalError) {
			r.observe(id, op, sessionID, models.OutcomeFailed, nil, cause.Kind)
			if onError != nil {
				onError(cause)
			}
		},
	})
	if displaced != nil {
		r.observe(displaced.ID, Operation(displaced.Operation), sessionID, models.OutcomeDisplaced, nil, "")
	}

	log.WithFields(log.Fields{"request": id, "operation": op, "session": sessionID}).Debug("operation submitted")

	if err := send(handle, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if rerr := r.store.Reject(id, errortranslator.Translate(err)); rerr != nil {
			log.Errorf("Submit of %s failed and its continuation is gone: %v", id, err)
		}
	}
	return Ticket(id)
}

// HandleEvent delivers a terminal listener event to the pending operation.
func (r *Router) HandleEvent(ev session.Event) {
	p, err := r.store.Take(ev.RequestID)
	if err != nil {
		log.WithFields(log.Fields{"request": ev.RequestID, "event": ev.Kind}).Warnf("Event dropped: %v", err)
		return
	}

	switch ev.Kind {
	case session.EventCancelled:
		deliverFailure(p, errortranslator.Cancelled())
	case session.EventFailed:
		deliverFailure(p, errortranslator.Translate(ev.Err))
	case session.EventNonceCreated:
		if Operation(p.Operation) == OpThreeDSecure && !liabilityShifted(ev.Nonce) {
			deliverFailure(p, models.OpaqueMessage(LiabilityNotShifted))
			return
		}
		result, cerr := normalizer.Normalize(ev.Nonce)
		if cerr != nil {
			deliverFailure(p, cerr)
			return
		}
		if p.Success != nil {
			p.Success(result)
		}
	default:
		deliverFailure(p, models.OpaqueMessage("unexpected event "+ev.Kind.String()))
	}
}

func (r *Router) respond(id string, value interface{}) {
	if err := r.store.Resolve(id, value); err != nil {
		log.WithFields(log.Fields{"request": id}).Warnf("Response dropped: %v", err)
	}
}

// fail delivers an error for an operation that never reached the store.
func (r *Router) fail(id Ticket, op Operation, onError func(*models.CanonicalError), cause *models.CanonicalError) {
	log.WithFields(log.Fields{"request": id, "operation": op}).Warnf("Operation rejected: %s", cause.Error())
	r.observe(string(id), op, r.session.ID(), models.OutcomeFailed, nil, cause.Kind)
	if onError != nil {
		onError(cause)
	}
}

func (r *Router) observe(id string, op Operation, sessionID string, status models.OutcomeStatus, value interface{}, errKind models.ErrorKind) {
	if r.observer == nil {
		return
	}
	outcome := models.Outcome{
		RequestID:  id,
		Operation:  string(op),
		Status:     status,
		ErrorKind:  errKind,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
	}
	if result, ok := value.(models.NonceResult); ok {
		outcome.NonceKind = result.Kind
	}
	r.observer.Observe(outcome)
}

func deliverFailure(p *resultslot.Pending, cause *models.CanonicalError) {
	if p.Failure != nil {
		p.Failure(cause)
	}
}

func liabilityShifted(nonce sdk.PaymentMethodNonce) bool {
	card, ok := nonce.(*sdk.CardNonce)
	if !ok || card.ThreeDSecureInfo == nil {
		return false
	}
	return card.ThreeDSecureInfo.LiabilityShiftPossible && card.ThreeDSecureInfo.LiabilityShifted
}

// typed adapts fn to the store's untyped success branch. A value of another
// type is reported back instead of reaching fn.
func typed[T any](fn func(T)) func(interface{}) *models.CanonicalError {
	return func(v interface{}) *models.CanonicalError {
		t, ok := v.(T)
		if !ok {
			return models.OpaqueMessage(UnexpectedResult)
		}
		if fn != nil {
			fn(t)
		}
		return nil
	}
}
