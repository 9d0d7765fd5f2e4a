// Package api exposes the ledger over HTTP/JSON.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/pkg/response"
)

// Deps are the services the router dispatches to. Auth and JWT are
// optional: without them the auth routes are not mounted and group routes
// are open. With JWT, /ledger/compute accepts but does not require a token.
type Deps struct {
	Groups  *service.GroupService
	Ledger  *service.LedgerService
	Auth    *service.AuthService
	JWT     *auth.JWTManager
	Metrics *metrics.Metrics

	CORSOrigins []string
}

// Handler handles HTTP requests for every resource.
type Handler struct {
	groups *service.GroupService
	ledger *service.LedgerService
	auth   *service.AuthService
}

// NewRouter builds the full HTTP handler.
func NewRouter(d Deps) http.Handler {
	h := &Handler{groups: d.Groups, ledger: d.Ledger, auth: d.Auth}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if d.Auth != nil {
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
		}

		r.Group(func(r chi.Router) {
			if d.JWT != nil {
				r.Use(middleware.OptionalAuth(d.JWT))
			}
			r.Post("/ledger/compute", h.Compute)
		})

		r.Group(func(r chi.Router) {
			if d.JWT != nil {
				r.Use(middleware.RequireAuth(d.JWT))
			}
			r.Mount("/groups", h.groupRoutes())
		})
	})

	return corsHandler(d.CORSOrigins).Handler(r)
}

func (h *Handler) groupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateGroup)
	r.Get("/", h.ListGroups)

	r.Route("/{groupID}", func(r chi.Router) {
		r.Get("/", h.GetGroup)
		r.Put("/", h.UpdateGroup)
		r.Delete("/", h.DeleteGroup)
		r.Post("/members", h.AddMembers)

		r.Post("/expenses", h.CreateExpense)
		r.Get("/expenses", h.ListExpenses)
		r.Put("/expenses/{expenseID}", h.UpdateExpense)
		r.Delete("/expenses/{expenseID}", h.DeleteExpense)

		r.Post("/settlements", h.CreateSettlement)
		r.Get("/settlements", h.ListSettlements)
		r.Delete("/settlements/{settlementID}", h.DeleteSettlement)

		r.Get("/balances", h.Balances)
		r.Get("/balances/simplified", h.SimplifiedBalances)
		r.Get("/balances/net", h.NetBalances)
	})

	return r
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
