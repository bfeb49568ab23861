package handlers

import (
	"net/http"

	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

func Healthz(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
