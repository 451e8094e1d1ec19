package controllers

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"paidpiper.com/nonce-gateway/log"
)

func NewRouter(c *PaymentController) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/session/setup", c.Setup).Methods("POST")
	router.HandleFunc("/api/card/nonce", c.TokenizeCard()).Methods("POST")
	router.HandleFunc("/api/paypal/one-time", c.PayPalOneTime()).Methods("POST")
	router.HandleFunc("/api/paypal/billing-agreement", c.PayPalBillingAgreement()).Methods("POST")
	router.HandleFunc("/api/googlepay/ready", c.GooglePayReady()).Methods("GET")
	router.HandleFunc("/api/googlepay/nonce", c.GooglePay()).Methods("POST")
	router.HandleFunc("/api/threedsecure/verify", c.ThreeDSecure()).Methods("POST")
	router.HandleFunc("/api/devicedata", c.DeviceData()).Methods("POST")
	router.HandleFunc("/api/status", c.Status).Methods("GET")

	return router
}

// NewHandler wraps the routes with CORS, request logging and tracing.
func NewHandler(c *PaymentController) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Traceparent"}),
		handlers.ExposedHeaders([]string{"X-Request-Id"}),
	)
	logged := handlers.LoggingHandler(log.Writer(), cors(NewRouter(c)))
	return otelhttp.NewHandler(logged, "nonce-gateway")
}
