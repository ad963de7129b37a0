package api

import (
	"net/http"

	"moneymanager/backend/handlers"
	"moneymanager/backend/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Options configures the cross-cutting HTTP behaviour
type Options struct {
	AllowedOrigins []string
	Production     bool
}

// Server represents the API server
type Server struct {
	router       *mux.Router
	transactions *handlers.TransactionHandler
	store        handlers.Pinger
	log          logrus.FieldLogger
	opts         Options
}

// NewServer creates a new API server
func NewServer(ledger handlers.Ledger, store handlers.Pinger, log logrus.FieldLogger, opts Options) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		transactions: handlers.NewTransactionHandler(ledger, log),
		store:        store,
		log:          log,
		opts:         opts,
	}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	s.router.NotFoundHandler = handlers.NotFound
	s.router.MethodNotAllowedHandler = handlers.MethodNotAllowed

	s.router.HandleFunc("/api/health", handlers.HealthCheck(s.store)).Methods("GET")

	s.router.HandleFunc("/api/transaction", s.transactions.AddTransaction).Methods("POST")
	s.router.HandleFunc("/api/transaction/{id}", s.transactions.GetTransaction).Methods("GET")
	s.router.HandleFunc("/api/transaction/{id}", s.transactions.UpdateTransaction).Methods("PUT")
	s.router.HandleFunc("/api/transactions", s.transactions.GetTransactions).Methods("GET")
	s.router.HandleFunc("/api/summary/categories", s.transactions.GetCategorySummary).Methods("GET")
	s.router.HandleFunc("/api/transfer", s.transactions.AddTransfer).Methods("POST")
}

// Handler returns the HTTP handler for the API server. CORS wraps the
// router itself so preflight requests are answered before route matching.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = middleware.CORS(s.opts.AllowedOrigins, s.opts.Production, s.log)(h)
	h = middleware.Recover(s.log)(h)
	h = middleware.RequestLogger(s.log)(h)
	return h
}
