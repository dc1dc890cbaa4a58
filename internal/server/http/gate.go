package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/token"
)

const bearerPrefix = "Bearer "

// IdentityLoader loads the principal named by a token subject.
type IdentityLoader interface {
	LoadByID(ctx context.Context, id int64) (*model.User, error)
}

// Gate authenticates requests on non-public routes.
//
// A request without a bearer header passes through as a guest. A bearer token
// that fails verification is answered with 403; a token whose subject is not
// a user id, or whose user no longer exists, with 401. Otherwise the identity
// is built from the freshly loaded user, so role changes apply immediately.
type Gate struct {
	codec   *token.Codec
	loader  IdentityLoader
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewGate constructs a Gate.
func NewGate(codec *token.Codec, loader IdentityLoader, log *zap.Logger, metrics *Metrics) *Gate {
	return &Gate{codec: codec, loader: loader, log: log, metrics: metrics, now: time.Now}
}

// Handler wraps next with the gate.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, bearerPrefix) {
			g.metrics.gateDecision(outcomeGuest)
			next.ServeHTTP(w, r)
			return
		}

		claims, err := g.codec.VerifyAccess(strings.TrimPrefix(h, bearerPrefix), g.now())
		if err != nil {
			g.log.Debug("gate: token rejected", zap.Error(err))
			g.metrics.gateDecision(outcomeInvalidToken)
			writeJSONError(w, http.StatusForbidden, msgInvalidToken)
			return
		}
		id, ok := claims.UserID()
		if !ok {
			g.metrics.gateDecision(outcomeBadSubject)
			writeJSONError(w, http.StatusUnauthorized, msgBadSubject)
			return
		}

		u, err := g.loader.LoadByID(r.Context(), id)
		switch {
		case errors.Is(err, errs.ErrNotFound):
			g.metrics.gateDecision(outcomeUnknownUser)
			writeJSONError(w, http.StatusUnauthorized, msgSignInAgain)
			return
		case err != nil:
			g.log.Error("gate: load identity", zap.Int64("user_id", id), zap.Error(err))
			g.metrics.gateDecision(outcomeStoreError)
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		// At most one identity per request.
		if _, bound := IdentityFromCtx(r.Context()); bound {
			g.metrics.gateDecision(outcomeAlreadyBound)
			next.ServeHTTP(w, r)
			return
		}
		g.metrics.gateDecision(outcomeAuthenticated)
		ctx := WithIdentity(r.Context(), model.Identity{
			UserID:   u.ID,
			Username: u.Username,
			Roles:    u.Roles,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity answers 401 for guests.
func requireIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, msgAuthRequired)
	}
	return id, ok
}
