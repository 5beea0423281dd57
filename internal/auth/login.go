package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mellioncoin-cloud/internal/audit"
	"mellioncoin-cloud/internal/observability/metrics"
)

// TokenTTL is the session lifetime. Sessions expire after fifteen
// minutes and clients re-authenticate.
const TokenTTL = 15 * time.Minute

// LoginHandler serves POST /api/v1/login.
type LoginHandler struct {
	users       UserStore
	lockout     *LockoutTracker
	secret      []byte
	auditLogger audit.Logger
}

// NewLoginHandler constructs a handler. The audit logger may be nil.
func NewLoginHandler(users UserStore, lockout *LockoutTracker, secret []byte, auditLogger audit.Logger) (*LoginHandler, error) {
	if users == nil {
		return nil, errors.New("login handler: nil user store")
	}
	if lockout == nil {
		return nil, errors.New("login handler: nil lockout tracker")
	}
	if len(secret) == 0 {
		return nil, errors.New("login handler: empty secret")
	}
	return &LoginHandler{users: users, lockout: lockout, secret: secret, auditLogger: auditLogger}, nil
}

// ServeHTTP authenticates the user and issues a JWT.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	key := req.Username + "|" + audit.ClientIP(r)
	if locked, remaining := h.lockout.Locked(key); locked {
		h.logAudit(r, req.Username, "login_locked_out", map[string]any{
			"retry_after_seconds": int(remaining.Seconds()) + 1,
		})
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())+1))
		metrics.IncLogin("locked_out")
		http.Error(w, "too many failed attempts", http.StatusTooManyRequests)
		return
	}

	user, err := h.users.Get(r.Context(), req.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		locked := h.lockout.RecordFailure(key)
		action := "login_failed"
		if locked {
			action = "login_lockout_triggered"
		}
		h.logAudit(r, req.Username, action, nil)
		metrics.IncLogin("failure")
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.lockout.RecordSuccess(key)
	token, err := IssueJWT(user.Username, user.Role, h.secret, TokenTTL)
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.logAudit(r, user.Username, "login_succeeded", nil)
	metrics.IncLogin("success")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token":      token,
		"role":       string(user.Role),
		"expires_in": int(TokenTTL.Seconds()),
	})
}

func (h *LoginHandler) logAudit(r *http.Request, username, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		ID:            audit.NewID(),
		Actor:         username,
		Action:        action,
		ResourceType:  "session",
		ResourceID:    username,
		Metadata:      payload,
		PayloadDigest: audit.DigestJSON(payload),
		IP:            audit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		CreatedAt:     time.Now().UTC(),
	})
}
