package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every route; protected routes go through authMW
func NewRouter(h *Handler, authMW mux.MiddlewareFunc, metrics http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/google/login", h.GoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.GoogleCallback).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(authMW)
	authRouter.HandleFunc("/demo/transactions", h.DemoTransactions).Methods("GET")
	authRouter.HandleFunc("/analysis", h.Analysis).Methods("POST")
	authRouter.HandleFunc("/decision", h.Decision).Methods("POST")
	authRouter.HandleFunc("/evaluate", h.Evaluate).Methods("POST")
	authRouter.HandleFunc("/reports/email", h.EmailReport).Methods("POST")
	authRouter.HandleFunc("/reports/{format}", h.Report).Methods("POST")

	return r
}
