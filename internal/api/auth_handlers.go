package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/keys"
	"github.com/ericogr/titan-arena/internal/logging"
	"github.com/ericogr/titan-arena/internal/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	sessionTTL     = 24 * time.Hour
	maxUsernameLen = 32
)

type AuthHandler struct {
	repo   storage.Repository
	roster Roster
}

func NewAuthHandler(repo storage.Repository, roster Roster) *AuthHandler {
	return &AuthHandler{repo: repo, roster: roster}
}

type LoginRequest struct {
	Username string `json:"username"`
}

// Login signs a player in by username alone. The player id is derived from
// the canonical username so the same name always maps to the same profile.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	name := strings.TrimSpace(req.Username)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUsernameRequired})
		return
	}
	if utf8.RuneCountInString(name) > maxUsernameLen {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUsernameTooLong})
		return
	}
	h.signIn(c, keys.PlayerIDForUsername(name), name, "")
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}

type GoogleOAuthCallbackRequest struct {
	Code string `json:"code"`
}

func (h *AuthHandler) GoogleOAuthCallback(c *gin.Context) {
	var req GoogleOAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	googleClientID := os.Getenv(constants.EnvGoogleClientID)
	googleClientSecret := os.Getenv(constants.EnvGoogleClientSecret)
	if googleClientID == "" || googleClientSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrMissingGoogleEnv})
		return
	}

	conf := &oauth2.Config{
		ClientID:     googleClientID,
		ClientSecret: googleClientSecret,
		RedirectURL:  constants.GoogleOAuthRedirect,
		Scopes:       constants.GoogleUserInfoScopes,
		Endpoint:     google.Endpoint,
	}

	token, err := conf.Exchange(context.Background(), req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrFailedExchangeToken, constants.JSONKeyDetails: err.Error()})
		return
	}

	client := conf.Client(context.Background(), token)
	resp, err := client.Get(constants.GoogleUserInfoURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedGetUserInfo, constants.JSONKeyDetails: err.Error()})
		return
	}
	defer resp.Body.Close()

	userData, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: fmt.Sprintf(constants.ErrFailedReadUserData, err.Error())})
		return
	}

	// Parse minimal fields from user info
	var payload map[string]any
	_ = json.Unmarshal(userData, &payload)
	email, _ := payload["email"].(string)
	name, _ := payload["name"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrNoEmailInGoogleProfile})
		return
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	h.signIn(c, keys.PlayerIDForEmail(email), name, email)
}

// signIn records the profile, makes sure the player owns a titan and mints
// the session cookie.
func (h *AuthHandler) signIn(c *gin.Context, playerID, name, email string) {
	if err := h.repo.UpsertUser(playerID, name, email); err != nil {
		logging.Error("failed to upsert user", err, logging.Fields{constants.LogFieldPlayerID: playerID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateSession})
		return
	}
	if _, err := h.roster.GetOrCreate(c.Request.Context(), playerID); err != nil {
		logging.Error("failed to provision titan", err, logging.Fields{constants.LogFieldPlayerID: playerID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchTitans})
		return
	}
	titans, err := h.roster.ForPlayer(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchTitans})
		return
	}

	sess, err := createSessionToken(playerID, name, sessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateSession, constants.JSONKeyDetails: err.Error()})
		return
	}
	setSessionCookie(c, sess, sessionTTL)
	logging.Info("player signed in", logging.Fields{constants.LogFieldPlayerID: playerID, constants.LogFieldName: name})

	out := gin.H{"playerId": playerID, "name": name, "titans": titans}
	if email != "" {
		out["email"] = email
	}
	c.JSON(http.StatusOK, out)
}
