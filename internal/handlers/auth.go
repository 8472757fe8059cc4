package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"rentListings/internal/auth"
	"rentListings/internal/models"

	"go.uber.org/zap"
)

type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *models.Session `json:"session,omitempty"`
}

type SignInResponse struct {
	models.AuthorizationToken
	Session  models.Session `json:"session"`
	Redirect string         `json:"redirect"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	defer r.Body.Close()

	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		badRequest(w, "Malformed request body")
		return creds, false
	}
	return creds, true
}

func SignUpHandler(authSvc *auth.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		user, err := authSvc.SignUp(r.Context(), creds)
		if err != nil {
			writeError(w, log, err)
			return
		}

		message := "Account created. You can sign in now."
		if !user.EmailConfirmed {
			message = "Check your email for the confirmation link."
		}

		writeJSON(w, http.StatusCreated, map[string]string{"user_id": user.Id, "message": message})
	})
}

func SignInHandler(authSvc *auth.Service, secureCookies bool, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		token, session, err := authSvc.SignIn(r.Context(), creds)
		if err != nil {
			writeError(w, log, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     AccessTokenCookie,
			Value:    token.Token,
			Path:     "/",
			Expires:  token.ExpiresAt,
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, SignInResponse{
			AuthorizationToken: token,
			Session:            session,
			Redirect:           auth.SafeRedirect(creds.RedirectTo),
		})
	})
}

func SignOutHandler(authSvc *auth.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := authSvc.SignOut(r.Context(), bearerToken(r)); err != nil {
			writeError(w, log, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     AccessTokenCookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
		})

		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully", "redirect": "/"})
	})
}

// SessionHandler reports the caller's session; it expects OptionalSession in
// front of it.
func SessionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, SessionResponse{})
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{Authenticated: true, Session: &session})
	})
}

// VerifyHandler is the target of the emailed confirmation link. It always
// answers with a redirect carrying a notice.
func VerifyHandler(authSvc *auth.Service, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, err := authSvc.Verify(r.Context(), r.URL.Query().Get("token"))
		if err != nil {
			log.Info("email verification rejected", zap.Error(err))
			http.Redirect(w, r, "/auth?notice="+url.QueryEscape("Verification link is invalid or has expired"), http.StatusFound)
			return
		}

		http.Redirect(w, r, "/auth?"+url.Values{
			"notice":   {"Email confirmed. Please sign in."},
			"redirect": {target},
		}.Encode(), http.StatusFound)
	})
}
