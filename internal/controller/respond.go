package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON body into dst and runs its validate tags.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErrors.NewValidation("", "invalid body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return appErrors.NewValidation(verrs[0].Field(), verrs[0].Field()+" is "+verrs[0].Tag())
		}
		return appErrors.NewValidation("", err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponder renders application errors. Key is the JSON field the
// message goes in; fallback replaces the text of unexpected errors.
type errorResponder struct {
	key      string
	fallback string
	logger   *zap.Logger
}

func (e errorResponder) write(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		msg = e.fallback
		if e.logger != nil {
			e.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
	}
	writeJSON(w, status, map[string]string{e.key: msg})
}

func statusOf(err error) (int, string) {
	var ve *appErrors.ValidationError
	var ae *appErrors.AuthError
	var nf *appErrors.NotFoundError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case appErrors.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &ae):
		return http.StatusUnauthorized, ae.Message
	case errors.As(err, &nf):
		kind := nf.Kind
		if kind != "" {
			kind = strings.ToUpper(kind[:1]) + kind[1:]
		}
		return http.StatusNotFound, kind + " not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
