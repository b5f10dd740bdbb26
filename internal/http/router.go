package http

import (
	"net/http"

	"github.com/WailSalutem-Health-Care/membership-service/internal/account"
	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	"github.com/WailSalutem-Health-Care/membership-service/internal/organization"
	"github.com/WailSalutem-Health-Care/membership-service/internal/profile"
	"github.com/WailSalutem-Health-Care/membership-service/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const serviceName = "membership-service"

// Dependencies are the handlers' collaborators, built in cmd/api
type Dependencies struct {
	Organizations  organization.ServiceInterface
	Accounts       account.ServiceInterface
	Profiles       *profile.Service
	Verifier       *auth.Verifier
	Permissions    auth.Permissions
	Metrics        *telemetry.Metrics
	AllowedOrigins []string
}

// SetupRouter initializes all routes for the application
func SetupRouter(deps Dependencies) http.Handler {
	orgHandler := organization.NewHandler(deps.Organizations)
	accountHandler := account.NewHandler(deps.Accounts)
	profileHandler := profile.NewHandler(deps.Profiles)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.HTTPMiddleware)
	}

	authenticated := auth.Middleware(deps.Verifier)
	if deps.Metrics != nil {
		authenticated = auth.MiddlewareWithMetrics(deps.Verifier, deps.Metrics)
	}
	protect := func(permission string, h http.HandlerFunc) http.Handler {
		var check func(http.Handler) http.Handler
		if deps.Metrics != nil {
			check = auth.RequirePermissionWithMetrics(permission, deps.Permissions, deps.Metrics)
		} else {
			check = auth.RequirePermission(permission, deps.Permissions)
		}
		return authenticated(check(h))
	}

	// Public endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"` + serviceName + `"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/signup", accountHandler.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", accountHandler.SignIn).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", accountHandler.SignOut).Methods(http.MethodPost)
	r.HandleFunc("/organizations/normalize-id", orgHandler.NormalizeOrganizationID).Methods(http.MethodPost)

	// Organization routes
	r.Handle("/organizations", protect("organization:create", orgHandler.CreateOrganization)).Methods(http.MethodPost)
	r.Handle("/organizations/{id}", protect("organization:view", orgHandler.GetOrganization)).Methods(http.MethodGet)
	r.Handle("/organizations/{id}/join", protect("organization:join", orgHandler.JoinOrganization)).Methods(http.MethodPost)
	r.Handle("/organizations/{id}/members", protect("organization:view", orgHandler.ListMembers)).Methods(http.MethodGet)

	// Caller views
	r.Handle("/me/organization", protect("profile:view", orgHandler.GetMyOrganization)).Methods(http.MethodGet)
	r.Handle("/me/profile", protect("profile:view", profileHandler.GetProfile)).Methods(http.MethodGet)
	r.Handle("/me/dashboard", protect("profile:view", profileHandler.GetDashboard)).Methods(http.MethodGet)

	return CORSMiddleware(deps.AllowedOrigins)(r)
}
