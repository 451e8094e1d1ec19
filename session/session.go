// Package session owns the single live payment SDK handle and its listeners.
package session

import (
	"context"
	"sync"

	"github.com/go-errors/errors"
	"github.com/google/uuid"

	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/sdk"
)

var (
	ErrNotReady    = errors.New("payment session is not set up")
	ErrNoUIContext = errors.New("no UI context available")
)

type Session struct {
	mutex           *sync.Mutex
	setupMutex      *sync.Mutex
	client          sdk.Client
	ui              UIProvider
	sink            EventSink
	returnURLScheme string

	handle sdk.Handle
	id     string
}

func New(client sdk.Client, ui UIProvider, returnURLScheme string) *Session {
	return &Session{
		mutex:           &sync.Mutex{},
		setupMutex:      &sync.Mutex{},
		client:          client,
		ui:              ui,
		returnURLScheme: returnURLScheme,
	}
}

// Bind sets the receiver of terminal events.
func (s *Session) Bind(sink EventSink) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sink = sink
}

// Setup replaces the live handle with one created from src. The previous
// handle is torn down first, so a failed setup leaves the session without a
// handle. Exactly one of onSuccess and onError is invoked.
func (s *Session) Setup(ctx context.Context, src CredentialSource, onSuccess func(credential string), onError func(*models.CanonicalError)) {
	s.setupMutex.Lock()

	s.mutex.Lock()
	s.teardown()
	s.mutex.Unlock()

	credential, handle, err := s.open(ctx, src)
	if err != nil {
		s.setupMutex.Unlock()
		log.Errorf("Payment session setup failed: %v", err)
		if onError != nil {
			onError(models.SetupFailed(err.Error()))
		}
		return
	}

	s.mutex.Lock()
	s.handle = handle
	s.id = uuid.New().String()
	id := s.id
	s.mutex.Unlock()
	s.setupMutex.Unlock()

	log.WithFields(log.Fields{"session": id}).Info("payment session ready")
	if onSuccess != nil {
		onSuccess(credential)
	}
}

func (s *Session) open(ctx context.Context, src CredentialSource) (string, sdk.Handle, error) {
	if src == nil {
		return "", nil, ErrEmptyCredential
	}
	credential, err := src.Resolve(ctx)
	if err != nil {
		return "", nil, err
	}

	var ui sdk.UIContext
	if s.ui != nil {
		ui = s.ui.Current()
	}
	if ui == nil {
		return "", nil, ErrNoUIContext
	}

	handle, err := s.client.CreateSession(ctx, sdk.SessionConfig{
		Credential:      credential,
		UI:              ui,
		ReturnURLScheme: s.returnURLScheme,
	})
	if err != nil {
		return "", nil, errors.Wrap(err, 0)
	}

	for _, l := range s.listeners() {
		if err := handle.AddListener(l); err != nil {
			detach(handle)
			return "", nil, errors.Wrap(err, 0)
		}
	}

	return credential, handle, nil
}

func (s *Session) listeners() []sdk.Listener {
	return []sdk.Listener{
		sdk.CancelListener(func(requestID string) {
			s.emit(Event{Kind: EventCancelled, RequestID: requestID})
		}),
		sdk.NonceCreatedListener(func(requestID string, nonce sdk.PaymentMethodNonce) {
			s.emit(Event{Kind: EventNonceCreated, RequestID: requestID, Nonce: nonce})
		}),
		sdk.ErrorListener(func(requestID string, err error) {
			s.emit(Event{Kind: EventFailed, RequestID: requestID, Err: err})
		}),
	}
}

func (s *Session) emit(ev Event) {
	s.mutex.Lock()
	sink := s.sink
	s.mutex.Unlock()

	if sink == nil {
		log.Warnf("Dropping %s event for %q, no sink bound", ev.Kind, ev.RequestID)
		return
	}
	sink.HandleEvent(ev)
}

// Handle returns the live SDK handle.
func (s *Session) Handle() (sdk.Handle, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.handle == nil {
		return nil, ErrNotReady
	}
	return s.handle, nil
}

// ID identifies the current handle; it changes on every successful setup.
func (s *Session) ID() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.id
}

func (s *Session) Ready() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.handle != nil
}

// Teardown detaches every listener and closes the handle.
func (s *Session) Teardown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.teardown()
}

func (s *Session) teardown() {
	if s.handle == nil {
		return
	}
	detach(s.handle)
	log.WithFields(log.Fields{"session": s.id}).Info("payment session torn down")
	s.handle = nil
	s.id = ""
}

func detach(handle sdk.Handle) {
	for _, kind := range []sdk.ListenerKind{sdk.ListenerCancel, sdk.ListenerNonceCreated, sdk.ListenerError} {
		handle.RemoveListener(kind)
	}
	if err := handle.Close(); err != nil {
		log.Warnf("Closing payment handle: %v", err)
	}
}
