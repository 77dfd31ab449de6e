package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", app.rootHandler)
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/test", app.testHandler)
	mux.HandleFunc("/webhooks/orders/create", app.orderWebhookHandler)
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	mux.Handle("/debug/vars", expvar.Handler())
	return WithRequestID(WithLogging(WithRecover(mux)))
}
