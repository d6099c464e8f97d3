package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

const defaultSessionSecret = "secret-key-change-in-production"

var (
	sessionStore = sessions.NewCookieStore([]byte(defaultSessionSecret))
	sessionName  = "saha-session"
)

// InitSessions keys the cookie store with the configured secret. It must
// run after config load (godotenv) so a SESSION_SECRET supplied via .env
// is honored; an empty secret keeps the development default.
func InitSessions(secret string) {
	if secret == "" {
		secret = defaultSessionSecret
	}
	sessionStore = sessions.NewCookieStore([]byte(secret))
}

// LoginHandler creates a session for a known user. The full account system
// lives in the main marketplace app; this seam exists so resolve-latest can
// establish identity.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !user.CheckPassword(req.Password) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// LogoutHandler clears the session
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = nil
	session.Options.MaxAge = -1
	session.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetCurrentUser returns the session user id, or 0 when no identity could
// be established.
func GetCurrentUser(r *http.Request) int {
	session, _ := sessionStore.Get(r, sessionName)
	userID, _ := session.Values["user_id"].(int)
	return userID
}
