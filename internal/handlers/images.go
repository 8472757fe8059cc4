package handlers

import (
	"errors"
	"io"
	"net/http"

	"rentListings/internal/storage"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ImageHandler streams a stored listing photo. Paths never change content,
// so responses are cacheable for good.
func ImageHandler(images storage.ImageStore, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, contentType, err := images.Open(r.Context(), mux.Vars(r)["path"])
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Kind: KindNotFound, Message: "Image not found"})
			return
		}
		if err != nil {
			writeError(w, log, err)
			return
		}
		defer body.Close()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, body); err != nil {
			log.Warn("image stream interrupted", zap.Error(err))
		}
	})
}
