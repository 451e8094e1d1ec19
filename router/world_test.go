package router

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/resultslot"
	"paidpiper.com/nonce-gateway/sdk"
	"paidpiper.com/nonce-gateway/sdk/fakesdk"
	"paidpiper.com/nonce-gateway/session"
)

type dispatchWorld struct {
	client   *fakesdk.Client
	router   *Router
	setupErr *models.CanonicalError
	setupOK  bool
	previous *fakesdk.Handle

	tickets map[string]Ticket
	results map[string]*results
}

func (w *dispatchWorld) register(sc *godog.ScenarioContext) {
	sc.Step(`^the dispatch mode is "([^"]+)"$`, w.dispatchMode)
	sc.Step(`^the session is set up with token "([^"]+)"$`, w.setupSession)
	sc.Step(`^setup succeeds$`, w.setupSucceeds)
	sc.Step(`^setup fails with "([^"]+)"$`, w.setupFails)
	sc.Step(`^the live handle has (\d+) listeners$`, w.liveListeners)
	sc.Step(`^the previous handle is closed without listeners$`, w.previousClosed)

	sc.Step(`^a card is tokenized as "([^"]+)"$`, w.tokenizeCard)
	sc.Step(`^a PayPal one-time payment is requested as "([^"]+)"$`, w.payPalOneTime)
	sc.Step(`^3-D Secure verification is requested as "([^"]+)"$`, w.threeDSecure)
	sc.Step(`^Google Pay readiness is queried as "([^"]+)"$`, w.readiness)
	sc.Step(`^device data is collected as "([^"]+)" with collector "([^"]+)"$`, w.deviceData)

	sc.Step(`^the SDK creates a card nonce for "([^"]+)"$`, w.cardNonce)
	sc.Step(`^the SDK creates an unshifted 3-D Secure nonce for "([^"]+)"$`, w.unshiftedNonce)
	sc.Step(`^the SDK reports readiness for "([^"]+)"$`, w.reportReadiness)
	sc.Step(`^the user cancels "([^"]+)"$`, w.cancel)
	sc.Step(`^the SDK fails "([^"]+)" with "([^"]+)"$`, w.fail)

	sc.Step(`^"([^"]+)" succeeds with a "([^"]+)" nonce$`, w.succeeds)
	sc.Step(`^"([^"]+)" fails with "([^"]+)"$`, w.fails)
	sc.Step(`^"([^"]+)" received exactly (\d+) results?$`, w.receivedExactly)
	sc.Step(`^no operation is pending$`, w.nonePending)
	sc.Step(`^nothing was submitted to the SDK$`, w.nothingSubmitted)
}

func (w *dispatchWorld) dispatchMode(mode string) error {
	m := resultslot.ModeCorrelated
	switch mode {
	case "correlated":
	case "single":
		m = resultslot.ModeSingle
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	w.client = fakesdk.NewClient("invalid")
	sess := session.New(w.client, session.UIProviderFunc(func() sdk.UIContext { return mainUI{} }), "")
	w.router = New(sess, resultslot.NewStore(resultslot.Options{Mode: m}), Options{})
	w.tickets = map[string]Ticket{}
	w.results = map[string]*results{}
	return nil
}

func (w *dispatchWorld) setupSession(token string) error {
	w.previous = w.client.Last()
	w.setupOK, w.setupErr = false, nil
	w.router.Setup(context.Background(), session.StaticToken(token),
		func(string) { w.setupOK = true },
		func(e *models.CanonicalError) { w.setupErr = e })
	return nil
}

func (w *dispatchWorld) setupSucceeds() error {
	if !w.setupOK || w.setupErr != nil {
		return fmt.Errorf("setup did not succeed: %v", w.setupErr)
	}
	return nil
}

func (w *dispatchWorld) setupFails(kind string) error {
	if w.setupErr == nil {
		return fmt.Errorf("setup did not fail")
	}
	if string(w.setupErr.Kind) != kind {
		return fmt.Errorf("expected %s, got %s", kind, w.setupErr.Kind)
	}
	return nil
}

func (w *dispatchWorld) liveListeners(n int) error {
	h, err := w.router.Session().Handle()
	if err != nil {
		return err
	}
	if got := len(h.Listeners()); got != n {
		return fmt.Errorf("expected %d listeners, got %d", n, got)
	}
	return nil
}

func (w *dispatchWorld) previousClosed() error {
	if w.previous == nil {
		return fmt.Errorf("there was no previous handle")
	}
	if !w.previous.Closed() || len(w.previous.Listeners()) != 0 {
		return fmt.Errorf("previous handle still live")
	}
	return nil
}

func (w *dispatchWorld) track(name string) *results {
	res := &results{}
	w.results[name] = res
	return res
}

func (w *dispatchWorld) tokenizeCard(name string) error {
	res := w.track(name)
	w.tickets[name] = w.router.TokenizeCard(context.Background(), models.Fields{models.CardNumber: "4111111111111111"}, res.onSuccess, res.onError)
	return nil
}

func (w *dispatchWorld) payPalOneTime(name string) error {
	res := w.track(name)
	w.tickets[name] = w.router.RequestPayPalOneTime(context.Background(), models.Fields{models.PayPalAmount: "10", models.PayPalCurrencyCode: "USD"}, res.onSuccess, res.onError)
	return nil
}

func (w *dispatchWorld) threeDSecure(name string) error {
	res := w.track(name)
	w.tickets[name] = w.router.VerifyThreeDSecure(context.Background(), models.Fields{models.ThreeDSecureNonce: "card-nonce", models.ThreeDSecureAmount: "10"}, res.onSuccess, res.onError)
	return nil
}

func (w *dispatchWorld) deviceData(name, collector string) error {
	res := w.track(name)
	w.tickets[name] = w.router.CollectDeviceData(context.Background(), models.Fields{models.DataCollector: collector},
		func(string) { res.nonces = append(res.nonces, models.NonceResult{Kind: models.NonceOpaque}) }, res.onError)
	return nil
}

func (w *dispatchWorld) readiness(name string) error {
	res := w.track(name)
	w.tickets[name] = w.router.IsReadyToPay(context.Background(),
		func(bool) { res.nonces = append(res.nonces, models.NonceResult{Kind: models.NonceOpaque}) }, res.onError)
	return nil
}

func (w *dispatchWorld) handle() (*fakesdk.Handle, error) {
	h := w.client.Last()
	if h == nil {
		return nil, fmt.Errorf("no handle")
	}
	return h, nil
}

func (w *dispatchWorld) cardNonce(name string) error {
	h, err := w.handle()
	if err != nil {
		return err
	}
	h.FireNonce(w.tickets[name].String(), &sdk.CardNonce{Token: "nonce-" + name, CardType: "Visa", LastFour: "1111"})
	return nil
}

func (w *dispatchWorld) unshiftedNonce(name string) error {
	h, err := w.handle()
	if err != nil {
		return err
	}
	h.FireNonce(w.tickets[name].String(), &sdk.CardNonce{
		Token:            "nonce-" + name,
		ThreeDSecureInfo: &sdk.ThreeDSecureInfo{LiabilityShiftPossible: true},
	})
	return nil
}

func (w *dispatchWorld) reportReadiness(name string) error {
	h, err := w.handle()
	if err != nil {
		return err
	}
	if !h.RespondReadiness(w.tickets[name].String(), true) {
		return fmt.Errorf("no readiness query pending for %s", name)
	}
	return nil
}

func (w *dispatchWorld) cancel(name string) error {
	h, err := w.handle()
	if err != nil {
		return err
	}
	h.FireCancel(w.tickets[name].String())
	return nil
}

func (w *dispatchWorld) fail(name, message string) error {
	h, err := w.handle()
	if err != nil {
		return err
	}
	h.FireError(w.tickets[name].String(), fmt.Errorf("%s", message))
	return nil
}

func (w *dispatchWorld) succeeds(name, kind string) error {
	res, ok := w.results[name]
	if !ok {
		return fmt.Errorf("unknown operation %q", name)
	}
	if len(res.nonces) != 1 || len(res.errs) != 0 {
		return fmt.Errorf("%s: expected one success, got %d successes and %d errors", name, len(res.nonces), len(res.errs))
	}
	if string(res.nonces[0].Kind) != kind {
		return fmt.Errorf("%s: expected %s nonce, got %s", name, kind, res.nonces[0].Kind)
	}
	return nil
}

func (w *dispatchWorld) fails(name, kind string) error {
	res, ok := w.results[name]
	if !ok {
		return fmt.Errorf("unknown operation %q", name)
	}
	if len(res.errs) == 0 {
		return fmt.Errorf("%s did not fail", name)
	}
	if string(res.errs[0].Kind) != kind {
		return fmt.Errorf("%s: expected %s, got %s", name, kind, res.errs[0].Kind)
	}
	return nil
}

func (w *dispatchWorld) receivedExactly(name string, n int) error {
	res, ok := w.results[name]
	if !ok {
		return fmt.Errorf("unknown operation %q", name)
	}
	if res.calls() != n {
		return fmt.Errorf("%s: expected %d results, got %d", name, n, res.calls())
	}
	return nil
}

func (w *dispatchWorld) nonePending() error {
	if n := w.router.PendingCount(); n != 0 {
		return fmt.Errorf("%d operations still pending", n)
	}
	return nil
}

func (w *dispatchWorld) nothingSubmitted() error {
	h, err := w.handle()
	if err != nil {
		return err
	}
	if n := len(h.Submissions()); n != 0 {
		return fmt.Errorf("%d submissions recorded", n)
	}
	return nil
}
