package server

import "net/http"

// LivenessBody is served to health checkers.
const LivenessBody = "RoastBot is running"

// Liveness answers every health check with 200. It holds no reference to
// the relay so an upstream model outage never fails the check.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(LivenessBody))
}

// NewMux returns a mux with the liveness routes mounted.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", Liveness)
	mux.HandleFunc("GET /healthz", Liveness)
	return mux
}
