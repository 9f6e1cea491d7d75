package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"imbalance-screener/src/helpers"
	"imbalance-screener/src/interfaces"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"
)

// -----------------------------------------------------------------------------

const refreshURL = "https://api-t1.fyers.in/api/v3/validate-refresh-token"

// -----------------------------------------------------------------------------

// SessionManager resolves and holds the bearer credential for broker calls.
// A stored access token is used as-is; otherwise the refresh token exchange
// is attempted once at startup. Without a usable token the screener runs in
// degraded mode: the UI stays interactive but no queries are issued.
type SessionManager struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	mu          sync.RWMutex
	accessToken string
}

// -----------------------------------------------------------------------------

func NewSessionManager(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *SessionManager {
	return &SessionManager{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Resolve obtains a working access token. Refresh failure is non-fatal: the
// manager logs a warning and leaves the session degraded.
func (s *SessionManager) Resolve() {
	if s.Config.Fyers.AccessToken != "" {
		s.setToken(s.Config.Fyers.AccessToken)
		s.Logger.Info("Using stored access token")
		return
	}

	if s.Config.Fyers.RefreshToken == "" {
		s.Logger.Warning("No access token or refresh token configured. Running degraded: no queries will be issued.")
		return
	}

	token, rotated, err := s.refreshAccessToken()
	if err != nil {
		s.Logger.Warning("Token refresh failed: %v. Running degraded.", err)
		return
	}

	s.setToken(token)
	if rotated != "" {
		s.Config.Fyers.RefreshToken = rotated
	}
	s.Logger.Info("Access token obtained using refresh token (session-only)")
}

// -----------------------------------------------------------------------------

// refreshTokenRequest is the documented refresh exchange payload.
type refreshTokenRequest struct {
	GrantType    string `json:"grant_type"`
	AppIDHash    string `json:"appIdHash"`
	RefreshToken string `json:"refresh_token"`
	Pin          string `json:"pin,omitempty"`
}

// refreshTokenResponse models both known response shapes: token fields at the
// top level or nested under "data". Lookup order is top-level first, then
// nested (explicit fallback, not map probing).
type refreshTokenResponse struct {
	Status       string `json:"s"`
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Data         struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"data"`
}

func (r *refreshTokenResponse) accessToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Data.AccessToken
}

func (r *refreshTokenResponse) rotatedRefreshToken() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.Data.RefreshToken
}

// -----------------------------------------------------------------------------

func (s *SessionManager) refreshAccessToken() (string, string, error) {
	payload := refreshTokenRequest{
		GrantType:    "refresh_token",
		AppIDHash:    AppIDHash(s.Config.Fyers.ClientID, s.Config.Fyers.SecretKey),
		RefreshToken: s.Config.Fyers.RefreshToken,
		Pin:          s.Config.Fyers.Pin,
	}

	body, err := s.Network.PostJSON(refreshURL, payload, nil)
	if err != nil {
		return "", "", helpers.NewCredentialError("refresh request failed", err)
	}

	var resp refreshTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", helpers.NewCredentialError("malformed refresh response", err)
	}

	token := resp.accessToken()
	if token == "" {
		return "", "", helpers.NewCredentialError(
			fmt.Sprintf("refresh response contained no access token (s=%s, message=%s)", resp.Status, resp.Message), nil)
	}

	return token, resp.rotatedRefreshToken(), nil
}

// -----------------------------------------------------------------------------

// AppIDHash is the SHA-256 hex digest of client_id+secret_key, used as the
// application identifier in the refresh exchange.
func AppIDHash(clientID, secretKey string) string {
	sum := sha256.Sum256([]byte(clientID + secretKey))
	return hex.EncodeToString(sum[:])
}

// -----------------------------------------------------------------------------

func (s *SessionManager) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// AuthHeader returns "client_id:access_token" as expected by the data API,
// or an empty string in degraded mode.
func (s *SessionManager) AuthHeader() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.accessToken == "" {
		return ""
	}
	return s.Config.Fyers.ClientID + ":" + s.accessToken
}

// -----------------------------------------------------------------------------

// Degraded reports whether no usable token is held.
func (s *SessionManager) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken == ""
}
