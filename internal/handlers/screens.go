package handlers

import (
	"net/http"

	"rentListings/internal/auth"
	"rentListings/internal/browse"
	"rentListings/internal/listings"
	"rentListings/internal/models"
	"rentListings/internal/render"
	"rentListings/internal/storage"
	"rentListings/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Screens answer with the view model the front end renders.

type FormOptions struct {
	PropertyTypes []models.PropertyType `json:"property_types"`
	TenantTypes   []models.TenantType   `json:"tenant_types"`
	Bedrooms      []string              `json:"bedrooms"`
	PriceFloor    float64               `json:"price_floor"`
	PriceCeiling  float64               `json:"price_ceiling"`
}

func formOptions() FormOptions {
	return FormOptions{
		PropertyTypes: models.PropertyTypes,
		TenantTypes:   models.TenantTypes,
		Bedrooms:      []string{"1", "2", "3", "4+"},
		PriceFloor:    models.PriceFloor,
		PriceCeiling:  models.PriceCeiling,
	}
}

type HomeScreen struct {
	Heading  string                 `json:"heading"`
	Filters  models.FilterSelection `json:"filters"`
	Location string                 `json:"location"`
	Options  FormOptions            `json:"options"`
	Cards    []render.Card          `json:"cards"`
}

type FormScreen struct {
	Id      string                 `json:"id,omitempty"`
	Form    validation.ListingForm `json:"form"`
	Options FormOptions            `json:"options"`
}

type AuthScreen struct {
	Notice            string `json:"notice,omitempty"`
	Redirect          string `json:"redirect"`
	MinPasswordLength int    `json:"min_password_length"`
}

func HomeScreenHandler(registry *browse.Registry, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := browseSession(w, r, registry)

		sel, filter, err := listingFilter(r, session.Filters.Filters())
		if err != nil {
			writeError(w, log, err)
			return
		}

		result, err := session.View.Load(r.Context(), filter)
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, HomeScreen{
			Heading:  render.Heading(len(result)),
			Filters:  sel,
			Location: filter.Location,
			Options:  formOptions(),
			Cards:    render.Cards(result),
		})
	})
}

func PropertyScreenHandler(svc *listings.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, log, err)
			return
		}

		viewer, _ := SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, render.NewDetail(listing, viewer.UserId))
	})
}

func CreateScreenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, FormScreen{Options: formOptions()})
	})
}

func EditScreenHandler(svc *listings.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())

		listing, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, log, err)
			return
		}
		if listing.UserId != session.UserId {
			writeError(w, log, storage.ErrNotFound)
			return
		}

		writeJSON(w, http.StatusOK, FormScreen{
			Id:      listing.Id,
			Form:    validation.FormFromListing(listing),
			Options: formOptions(),
		})
	})
}

func AuthScreenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeJSON(w, http.StatusOK, AuthScreen{
			Notice:            q.Get("notice"),
			Redirect:          auth.SafeRedirect(q.Get("redirect")),
			MinPasswordLength: 6,
		})
	})
}

func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Kind: KindNotFound, Message: "Page not found", Redirect: "/"})
	})
}
