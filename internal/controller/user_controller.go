package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

type UserController struct {
	Users  repository.UserRepositoryInterface
	Logger *zap.Logger
}

// Profile returns the signed-in user. Google credentials are never encoded.
func (c *UserController) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := c.Users.GetByID(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		errorResponder{key: "message", fallback: "Server Error", logger: c.Logger}.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
