package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BlendWitTech/mero-jugx-sub003/svc/invitation"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError translates domain sentinels into HTTP statuses. Anything
// unmatched is a 500 with a generic body; the detail goes to the log only.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, invitation.ErrValidation), errors.Is(err, organization.ErrValidation):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, invitation.ErrExpired):
		status, message = http.StatusGone, err.Error()
	case errors.Is(err, invitation.ErrConflict), errors.Is(err, organization.ErrLastOwner):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, organization.ErrPermissionDenied),
		errors.Is(err, invitation.ErrRoleNotAssignable),
		errors.Is(err, organization.ErrNotMember):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, invitation.ErrNotFound),
		errors.Is(err, organization.ErrNotFound),
		errors.Is(err, organization.ErrNoMembership):
		status, message = http.StatusNotFound, err.Error()
	}

	if status == http.StatusInternalServerError {
		a.Log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	a.respondJSON(w, status, errorResponse{Error: message})
}
