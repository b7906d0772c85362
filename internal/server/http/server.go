// Package httpserver exposes the quota gate over a JSON HTTP API.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/moonuidesign/quotagate/internal/entitlement"
	"github.com/moonuidesign/quotagate/internal/errs"
	"github.com/moonuidesign/quotagate/internal/identity"
	"github.com/moonuidesign/quotagate/internal/model"
	"github.com/moonuidesign/quotagate/internal/quota"
)

const maxBodyBytes = 1 << 20

// Server wires the gate into HTTP handlers.
type Server struct {
	gate       *quota.Gate
	tiers      entitlement.Store
	signKey    []byte
	adminToken string
	trustXFF   bool
	log        *zap.Logger
}

// Option configures optional server behavior.
type Option func(*Server)

// WithAdminToken enables the entitlement admin endpoint guarded by the token.
func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

// WithTrustedProxy makes the server take client addresses from X-Forwarded-For.
func WithTrustedProxy(trust bool) Option {
	return func(s *Server) { s.trustXFF = trust }
}

// New constructs a server with injected dependencies.
func New(gate *quota.Gate, tiers entitlement.Store, signKey []byte, log *zap.Logger, opts ...Option) *Server {
	s := &Server{gate: gate, tiers: tiers, signKey: signKey, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route mux. Middleware is layered on by the caller.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/quota/check", s.handleCheck)
	mux.HandleFunc("POST /v1/quota/usage", s.handleUsage)
	mux.HandleFunc("PUT /v1/entitlements", s.handleSetTier)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// handleCheck evaluates a quota check. Quota and identity denials are normal
// 200 responses the UI branches on; only malformed requests and backend
// outages map to error status codes.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := s.accessRequest(w, r)
	if !ok {
		return
	}

	d := s.gate.Check(r.Context(), req)
	writeJSON(w, decisionStatus(d), checkResponse{
		Success:         d.Allowed,
		Reason:          string(d.Reason),
		Message:         d.Message,
		RequiresLogin:   d.RequiresLogin,
		RequiresUpgrade: d.RequiresUpgrade,
		Remaining:       d.Remaining,
	})
}

// handleUsage charges one use after the caller completed the gated action.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	req, ok := s.accessRequest(w, r)
	if !ok {
		return
	}

	if err := s.gate.Record(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidRequest), errors.Is(err, errs.ErrIdentityUnavailable):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			s.log.Error("record usage failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "try again"})
		}
		return
	}
	writeJSON(w, http.StatusAccepted, usageResponse{Recorded: true})
}

// handleSetTier upserts a user's tier. Disabled unless an admin token is configured.
func (s *Server) handleSetTier(w http.ResponseWriter, r *http.Request) {
	if s.adminToken == "" || r.Header.Get("X-Admin-Token") != s.adminToken {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var body setTierRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body"})
		return
	}
	userID, err := uuid.FromString(body.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad user id"})
		return
	}
	tier, err := model.ParseTier(body.Tier)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.tiers.SetTier(r.Context(), userID, tier); err != nil {
		s.log.Error("set tier failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "try again"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessRequest decodes and validates the wire request and resolves identity.
// Returns ok=false after writing an error response.
func (s *Server) accessRequest(w http.ResponseWriter, r *http.Request) (model.AccessRequest, bool) {
	var body checkRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body"})
		return model.AccessRequest{}, false
	}

	action, err := model.ParseActionKind(body.Action)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return model.AccessRequest{}, false
	}
	assetType, err := model.ParseAssetType(body.AssetType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return model.AccessRequest{}, false
	}

	id := model.Identity{VisitorKey: body.VisitorKey}
	if tok, ok := identity.BearerToken(r); ok {
		userID, err := identity.UserIDFromToken(tok, s.signKey)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return model.AccessRequest{}, false
		}
		id.UserID = userID
	}
	if !id.Resolvable() {
		// Fingerprinting failed client-side: fall back to the network address.
		if addr := identity.ClientAddr(r, s.trustXFF); addr != "" {
			id.VisitorKey = "ip:" + addr
		}
	}

	return model.AccessRequest{
		Action:    action,
		AssetID:   body.AssetID,
		AssetType: assetType,
		Identity:  id,
	}, true
}

func decisionStatus(d model.LimitDecision) int {
	switch d.Reason {
	case model.ReasonInvalidRequest:
		return http.StatusBadRequest
	case model.ReasonUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
