package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
	"github.com/chudo9991/more.tech.2025-sub000/internal/service"
	"github.com/chudo9991/more.tech.2025-sub000/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	SessionRepo       repository.SessionRepo
	NavigationService *service.NavigationService
	GeneratorService  *service.ContextualQuestionGenerator
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.SessionRepo, c.NavigationService)
	questionHandler := handler.NewQuestionHandler(c.GeneratorService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/answers", sessionHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/transitions", sessionHandler.Transitions).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/context", sessionHandler.Context).Methods("GET", "OPTIONS")

	v1.HandleFunc("/sessions/{sessionId}/nodes/{nodeId}/questions", questionHandler.Generate).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/nodes/{nodeId}/questions/status", questionHandler.Status).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
