package dashboard

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// actorHeader carries the authenticated user's id, set by the upstream
// authentication proxy.
const actorHeader = "X-User-Id"

type ctxKey int

const actorKey ctxKey = iota

// requireActor rejects requests without a valid actor id. Handlers behind it
// may call actorID without checking.
func (a *API) requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(actorHeader))
		if err != nil || id == uuid.Nil {
			a.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, id)))
	})
}

func actorID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(actorKey).(uuid.UUID)
	return id
}
