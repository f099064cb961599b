package http

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
)

// ══════════════════════════════════════════════════════════════════════════════
// API KEY AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// requireAPIKey authenticates the request with a researcher API key.
//
// The key has the form "<researcherID>.<secret>". The ID part selects the
// researcher record directly, so verification is a single lookup plus one
// bcrypt comparison against the stored hash. Only the hash is persisted;
// the secret exists client-side only.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := s.extractAPIKey(r)
		if key == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "API key required")
			return
		}

		researcherID, secret, ok := strings.Cut(key, ".")
		if !ok || researcherID == "" || secret == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Malformed API key")
			return
		}

		res, err := s.deps.AuthRepo.GetByID(r.Context(), researcherID)
		if err != nil {
			// Not-found and lookup failures look identical to the caller.
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(res.APIKeyHash), []byte(secret)) != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyResearcher, res)
		next(w, r.WithContext(ctx))
	}
}

// extractAPIKey reads the key from the configured header, falling back to
// a bearer token.
func (s *Server) extractAPIKey(r *http.Request) string {
	header := s.config.APIKeyHeader
	if header == "" {
		header = "X-API-Key"
	}

	if key := r.Header.Get(header); key != "" {
		return key
	}

	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// authenticatedResearcher returns the researcher attached by requireAPIKey.
func authenticatedResearcher(ctx context.Context) (*researcher.Researcher, bool) {
	res, ok := ctx.Value(contextKeyResearcher).(*researcher.Researcher)
	return res, ok
}
