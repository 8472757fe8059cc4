package router

import (
	"net/http"

	"rentListings/internal/auth"
	"rentListings/internal/browse"
	"rentListings/internal/handlers"
	"rentListings/internal/listings"
	"rentListings/internal/metrics"
	"rentListings/internal/storage"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 32 << 20

type Dependencies struct {
	Auth     *auth.Service
	Listings *listings.Service
	Browse   *browse.Registry
	Images   storage.ImageStore
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	AllowedOrigins []string
	MaxUploadBytes int64
	SecureCookies  bool
}

func New(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{`*`}
	}

	api := func(h http.Handler) http.Handler {
		return handlers.AuthorizationMiddleware(h, handlers.GateAPI, deps.Auth, log)
	}
	screen := func(h http.Handler) http.Handler {
		return handlers.AuthorizationMiddleware(h, handlers.GateScreen, deps.Auth, log)
	}
	optional := func(h http.Handler) http.Handler {
		return handlers.OptionalSession(h, deps.Auth)
	}

	router := mux.NewRouter()
	router.Use(handlers.Recover(log), handlers.Instrument(log, deps.Metrics))

	router.Handle(`/api/filters`, handlers.GetFiltersHandler(deps.Browse)).Methods(`GET`)
	router.Handle(`/api/filters`, handlers.PatchFiltersHandler(deps.Browse, log)).Methods(`PATCH`)
	router.Handle(`/api/filters/reset`, handlers.ResetFiltersHandler(deps.Browse)).Methods(`POST`)

	router.Handle(`/api/listings`, handlers.ListListingsHandler(deps.Browse, log)).Methods(`GET`)
	router.Handle(`/api/listings`, api(handlers.CreateListingHandler(deps.Listings, maxUpload, log))).Methods(`POST`)
	router.Handle(`/api/listings/{id}`, handlers.GetListingHandler(deps.Listings, log)).Methods(`GET`)
	router.Handle(`/api/listings/{id}`, api(handlers.UpdateListingHandler(deps.Listings, maxUpload, log))).Methods(`PUT`)
	router.Handle(`/api/listings/{id}`, api(handlers.DeleteListingHandler(deps.Listings, log))).Methods(`DELETE`)
	router.Handle(`/api/dashboard`, api(handlers.DashboardHandler(deps.Listings, log))).Methods(`GET`)

	router.Handle(`/api/auth/signup`, handlers.SignUpHandler(deps.Auth, log)).Methods(`POST`)
	router.Handle(`/api/auth/signin`, handlers.SignInHandler(deps.Auth, deps.SecureCookies, log)).Methods(`POST`)
	router.Handle(`/api/auth/signout`, handlers.SignOutHandler(deps.Auth, log)).Methods(`POST`)
	router.Handle(`/api/auth/session`, optional(handlers.SessionHandler())).Methods(`GET`)
	router.Handle(`/api/auth/verify`, handlers.VerifyHandler(deps.Auth, log)).Methods(`GET`)

	router.Handle(`/images/{path:.+}`, handlers.ImageHandler(deps.Images, log)).Methods(`GET`)
	if deps.Metrics != nil {
		router.Handle(`/metrics`, deps.Metrics.Handler()).Methods(`GET`)
	}

	router.Handle(`/`, handlers.HomeScreenHandler(deps.Browse, log)).Methods(`GET`)
	router.Handle(`/property/{id}`, optional(handlers.PropertyScreenHandler(deps.Listings, log))).Methods(`GET`)
	router.Handle(`/create`, screen(handlers.CreateScreenHandler())).Methods(`GET`)
	router.Handle(`/edit/{id}`, screen(handlers.EditScreenHandler(deps.Listings, log))).Methods(`GET`)
	router.Handle(`/admin`, screen(handlers.DashboardHandler(deps.Listings, log))).Methods(`GET`)
	router.Handle(`/auth`, handlers.AuthScreenHandler()).Methods(`GET`)

	router.NotFoundHandler = handlers.Instrument(log, deps.Metrics)(handlers.NotFoundHandler())

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{`GET`, `POST`, `DELETE`, `OPTIONS`, `PATCH`, `PUT`},
		AllowedHeaders:   []string{`Content-Type`, `Authorization`},
		AllowCredentials: true,
	}).Handler(router)

	// The route is unknown until mux matches; Instrument renames the span.
	return otelhttp.NewHandler(handler, "rent-listings",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	)
}
