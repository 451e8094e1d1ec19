package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"paidpiper.com/nonce-gateway/common"
	"paidpiper.com/nonce-gateway/config"
	"paidpiper.com/nonce-gateway/controllers"
	"paidpiper.com/nonce-gateway/events"
	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/resultslot"
	"paidpiper.com/nonce-gateway/router"
	"paidpiper.com/nonce-gateway/sdk"
	"paidpiper.com/nonce-gateway/sdk/fakesdk"
	"paidpiper.com/nonce-gateway/session"
	"paidpiper.com/nonce-gateway/version"
)

type sandboxUI struct{}

func (sandboxUI) Name() string { return "sandbox" }

func loadConfig() (*config.Configuration, error) {
	cfg, err := config.ParseConfig()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func setupTelemetry(lc fx.Lifecycle, cfg *config.Configuration) {
	var shutdown func()
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			shutdown = common.InitGlobalTracer(cfg.Tracing)
			return nil
		},
		OnStop: func(context.Context) error {
			if shutdown != nil {
				shutdown()
			}
			return nil
		},
	})
}

func newSDKClient(cfg *config.Configuration) sdk.Client {
	client := fakesdk.NewClient(cfg.Sandbox.InvalidTokens...)
	client.AutoRespond = true
	return client
}

func newFetcher(cfg *config.Configuration) session.Fetcher {
	return session.NewHTTPFetcher(cfg.Credential.FetchTimeout)
}

// newCredentialSource prefers a configured token over a token url.
func newCredentialSource(cfg *config.Configuration, fetcher session.Fetcher) session.CredentialSource {
	if cfg.Credential.ClientToken != "" {
		return session.StaticToken(cfg.Credential.ClientToken)
	}
	return session.RemoteToken{URL: cfg.Credential.ClientTokenURL, Fetcher: fetcher}
}

func newSession(cfg *config.Configuration, client sdk.Client, lc fx.Lifecycle) *session.Session {
	sess := session.New(client, session.UIProviderFunc(func() sdk.UIContext { return sandboxUI{} }), cfg.Credential.ReturnURLScheme)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sess.Teardown()
			return nil
		},
	})
	return sess
}

func newStore(cfg *config.Configuration) *resultslot.Store {
	mode := resultslot.ModeCorrelated
	if cfg.Dispatch.Mode == config.DispatchSingle {
		mode = resultslot.ModeSingle
	}
	return resultslot.NewStore(resultslot.Options{
		Mode:           mode,
		Timeout:        cfg.Dispatch.PendingTimeout,
		RecentCapacity: uint(cfg.Dispatch.RecentCapacity),
	})
}

// newOutcomeObserver returns nil when no Kafka brokers are configured.
func newOutcomeObserver(cfg *config.Configuration, lc fx.Lifecycle) router.OutcomeObserver {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("Kafka brokers not configured, outcome events disabled")
		return nil
	}
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	log.Infof("Publishing outcome events to %s", cfg.Kafka.Topic)
	return publisher
}

func newRouter(cfg *config.Configuration, sess *session.Session, store *resultslot.Store, observer router.OutcomeObserver) *router.Router {
	return router.New(sess, store, router.Options{
		GooglePayMerchantID: cfg.GooglePay.MerchantID,
		Observer:            observer,
	})
}

// setupSession creates the initial session when a credential is configured.
func setupSession(lc fx.Lifecycle, cfg *config.Configuration, r *router.Router, src session.CredentialSource) {
	if cfg.Credential.ClientToken == "" && cfg.Credential.ClientTokenURL == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			r.Setup(ctx, src, func(string) {
				log.Infof("Initial payment session %s ready", r.Session().ID())
			}, func(err *models.CanonicalError) {
				log.Warnf("Initial payment session setup failed: %v", err)
			})
			return nil
		},
	})
}

func registerWebServer(lc fx.Lifecycle, cfg *config.Configuration, shutdowner fx.Shutdowner, c *controllers.PaymentController) {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: controllers.NewHandler(c),
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Infof("Nonce gateway listening on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("Error starting http server: %v", err)
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func main() {
	_ = godotenv.Load()
	log.Infof("nonce_gateway %v, built %v", version.Version(), version.BuildDate())

	app := fx.New(
		fx.Provide(
			loadConfig,
			newSDKClient,
			newFetcher,
			newCredentialSource,
			newSession,
			newStore,
			newOutcomeObserver,
			newRouter,
			controllers.NewPaymentController,
		),
		fx.Invoke(
			setupTelemetry,
			setupSession,
			registerWebServer,
		),
	)

	app.Run()
}
