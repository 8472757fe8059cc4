package handlers

import (
	"encoding/json"
	"net/http"

	"rentListings/internal/browse"
	"rentListings/internal/models"
	"rentListings/internal/validation"

	"go.uber.org/zap"
)

// browseSession resolves the caller's browsing session, issuing the cookie
// when a new one had to be created.
func browseSession(w http.ResponseWriter, r *http.Request, registry *browse.Registry) *browse.Session {
	id := ""
	if c, err := r.Cookie(browse.CookieName); err == nil {
		id = c.Value
	}

	session, created := registry.Session(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     browse.CookieName,
			Value:    session.Id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return session
}

const priceRangeMessage = "Price range must lie within 0 and 100000 with the lower bound first"

func checkPatch(p models.FilterPatch) error {
	errs := validation.Errors{}

	if p.PropertyType.Value != nil && !p.PropertyType.Value.Valid() {
		errs["property_type"] = "Unknown property type"
	}
	if p.TenantType.Value != nil && !p.TenantType.Value.Valid() {
		errs["tenant_type"] = "Unknown tenant type"
	}
	if pr := p.PriceRange; pr != nil && !pr.Valid() {
		errs["price_range"] = priceRangeMessage
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func GetFiltersHandler(registry *browse.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := browseSession(w, r, registry)
		writeJSON(w, http.StatusOK, session.Filters.Filters())
	})
}

func PatchFiltersHandler(registry *browse.Registry, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var patch models.FilterPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, log, validation.Errors{"filters": err.Error()})
			return
		}
		if err := checkPatch(patch); err != nil {
			writeError(w, log, err)
			return
		}

		session := browseSession(w, r, registry)
		writeJSON(w, http.StatusOK, session.Filters.SetFilters(patch))
	})
}

func ResetFiltersHandler(registry *browse.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := browseSession(w, r, registry)
		writeJSON(w, http.StatusOK, session.Filters.ResetFilters())
	})
}
