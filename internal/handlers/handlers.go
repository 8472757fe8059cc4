package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"rentListings/internal/auth"
	"rentListings/internal/listings"
	"rentListings/internal/query"
	"rentListings/internal/storage"
	"rentListings/internal/validation"

	"go.uber.org/zap"
)

const (
	KindValidation = "validation"
	KindAuth       = "auth"
	KindBackend    = "backend"
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindSuperseded = "superseded"
)

const (
	noticeSignIn       = "Please sign in to continue"
	noticeInvalidCreds = "Invalid email or password"
	noticeUnconfirmed  = "Email not confirmed. Check your inbox for the confirmation link."
	noticeInvalidID    = "Invalid property ID format"
	noticeNotFound     = "Property not found"
)

type ErrorResponse struct {
	Kind     string            `json:"kind"`
	Message  string            `json:"message,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a failed operation onto its HTTP form. Anything that is not
// a recognised sentinel is reported as a backend failure carrying the
// original message.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var fields validation.Errors

	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Kind: KindValidation, Fields: fields})
	case errors.Is(err, auth.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Kind: KindAuth, Message: noticeSignIn, Redirect: "/auth"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Kind: KindAuth, Message: noticeInvalidCreds})
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Kind: KindAuth, Message: noticeUnconfirmed})
	case errors.Is(err, auth.ErrInvalidVerification):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Kind: KindAuth, Message: "Verification link is invalid or has expired"})
	case errors.Is(err, storage.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, ErrorResponse{Kind: KindConflict, Message: "Email already registered"})
	case errors.Is(err, listings.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Kind: KindNotFound, Message: noticeInvalidID})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Kind: KindNotFound, Message: noticeNotFound})
	case errors.Is(err, query.ErrSuperseded):
		writeJSON(w, http.StatusConflict, ErrorResponse{Kind: KindSuperseded, Message: "A newer search replaced this one"})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Kind: KindBackend, Message: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Kind: KindValidation, Message: message})
}

// signInRedirect sends a browser to the sign-in screen, remembering where it
// was headed.
func signInRedirect(w http.ResponseWriter, r *http.Request, notice string) {
	q := url.Values{}
	q.Set("notice", notice)
	q.Set("redirect", r.URL.RequestURI())
	http.Redirect(w, r, "/auth?"+q.Encode(), http.StatusFound)
}
