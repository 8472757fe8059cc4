package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"rentListings/internal/browse"
	"rentListings/internal/listings"
	"rentListings/internal/models"
	"rentListings/internal/render"
	"rentListings/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const imagesField = "images"

type ListingsResponse struct {
	Count    int                    `json:"count"`
	Filters  models.FilterSelection `json:"filters"`
	Location string                 `json:"location"`
	Listings []models.Listing       `json:"listings"`
}

type CreatedResponse struct {
	Id      string         `json:"id"`
	Listing models.Listing `json:"listing"`
}

// listingFilter composes the query from the session's filter selection and
// the search text. Query parameters override the stored selection for this
// request only.
func listingFilter(r *http.Request, sel models.FilterSelection) (models.FilterSelection, models.ListingFilter, error) {
	q := r.URL.Query()
	errs := validation.Errors{}

	if v := q.Get("property_type"); v != "" {
		pt := models.PropertyType(v)
		if !pt.Valid() {
			errs["property_type"] = "Unknown property type"
		}
		sel.PropertyType = &pt
	}
	if v := q.Get("tenant_type"); v != "" {
		tt := models.TenantType(v)
		if !tt.Valid() {
			errs["tenant_type"] = "Unknown tenant type"
		}
		sel.TenantType = &tt
	}
	if v := q.Get("bedrooms"); v != "" {
		b, err := models.ParseBedroomBucket(v)
		if err != nil {
			errs["bedrooms"] = "Bedrooms must be one of 1, 2, 3, 4+"
		}
		sel.Bedrooms = &b
	}
	for i, key := range []string{"min_price", "max_price"} {
		if v := q.Get(key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs[key] = "Price must be a number"
			}
			sel.PriceRange[i] = n
		}
	}
	_, badMin := errs["min_price"]
	_, badMax := errs["max_price"]
	if !badMin && !badMax && !sel.PriceRange.Valid() {
		errs["price_range"] = priceRangeMessage
	}

	if len(errs) > 0 {
		return sel, models.ListingFilter{}, errs
	}
	return sel, models.NewListingFilter(sel, strings.TrimSpace(q.Get("location"))), nil
}

func ListListingsHandler(registry *browse.Registry, log *zap.Logger) http.Handler {
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

		writeJSON(w, http.StatusOK, ListingsResponse{
			Count:    len(result),
			Filters:  sel,
			Location: filter.Location,
			Listings: result,
		})
	})
}

func GetListingHandler(svc *listings.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, listing)
	})
}

func formFromValues(get func(string) string) validation.ListingForm {
	return validation.ListingForm{
		Title:        validation.FieldValue(get("title")),
		Description:  validation.FieldValue(get("description")),
		Price:        validation.FieldValue(get("price")),
		Location:     validation.FieldValue(get("location")),
		PropertyType: validation.FieldValue(get("property_type")),
		TenantType:   validation.FieldValue(get("tenant_type")),
		Bedrooms:     validation.FieldValue(get("bedrooms")),
		Bathrooms:    validation.FieldValue(get("bathrooms")),
		OwnerNumber:  validation.FieldValue(get("owner_number")),
	}
}

// decodeListingForm reads a listing form from a JSON, urlencoded or
// multipart body. Files only travel in multipart bodies; cleanup releases
// their temporary storage.
func decodeListingForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (validation.ListingForm, []models.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return validation.ListingForm{}, nil, noop, bodyError(err)
		}
		cleanup := func() { r.MultipartForm.RemoveAll() }

		var uploads []models.Upload
		for _, fh := range r.MultipartForm.File[imagesField] {
			uploads = append(uploads, models.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
		return formFromValues(r.FormValue), uploads, cleanup, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return validation.ListingForm{}, nil, noop, bodyError(err)
		}
		return formFromValues(r.PostFormValue), nil, noop, nil

	default:
		defer r.Body.Close()
		var form validation.ListingForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return validation.ListingForm{}, nil, noop, bodyError(err)
		}
		return form, nil, noop, nil
	}
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return validation.Errors{imagesField: "Upload is too large"}
	}
	return validation.Errors{"body": "Malformed request body"}
}

func CreateListingHandler(svc *listings.Service, maxBytes int64, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())

		form, uploads, cleanup, err := decodeListingForm(w, r, maxBytes)
		defer cleanup()
		if err != nil {
			writeError(w, log, err)
			return
		}

		listing, err := svc.Create(r.Context(), session.UserId, form, uploads)
		if err != nil {
			writeError(w, log, err)
			return
		}

		w.Header().Set("Location", "/property/"+listing.Id)
		writeJSON(w, http.StatusCreated, CreatedResponse{Id: listing.Id, Listing: listing})
	})
}

func UpdateListingHandler(svc *listings.Service, maxBytes int64, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())

		form, _, cleanup, err := decodeListingForm(w, r, maxBytes)
		defer cleanup()
		if err != nil {
			writeError(w, log, err)
			return
		}

		listing, err := svc.Update(r.Context(), session.UserId, mux.Vars(r)["id"], form)
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, listing)
	})
}

func DeleteListingHandler(svc *listings.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())

		if err := svc.Delete(r.Context(), session.UserId, mux.Vars(r)["id"]); err != nil {
			writeError(w, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

type DashboardResponse struct {
	Heading string        `json:"heading"`
	Email   string        `json:"email"`
	Cards   []render.Card `json:"cards"`
}

func DashboardHandler(svc *listings.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())

		owned, err := svc.ListByOwner(r.Context(), session.UserId)
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, DashboardResponse{
			Heading: "Manage Properties",
			Email:   session.Email,
			Cards:   render.Cards(owned),
		})
	})
}
