package api

import (
	"net/http"
	"strconv"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/gin-gonic/gin"
)

const recentMatchesLimit = 10

// ListAbilities returns the ability catalog.
func (h *GameHandler) ListAbilities(c *gin.Context) {
	c.JSON(http.StatusOK, abilities.Describe(abilities.IDs()))
}

// ListLeaderboard returns the top players by wins (desc), limited to top 10 by default.
func (h *GameHandler) ListLeaderboard(c *gin.Context) {
	// optional ?limit=N
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	users, err := h.repo.GetTopPlayers(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	out, err := MarshalForContext(c, users)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, out)
}

// PlayerStats returns the session player's aggregate stats and recent matches.
func (h *GameHandler) PlayerStats(c *gin.Context) {
	playerID, _ := playerFrom(c)
	user, err := h.repo.GetUser(playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	matches, err := h.repo.GetRecentMatches(playerID, recentMatchesLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	out, err := MarshalForContext(c, gin.H{"stats": user, "recentMatches": matches})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListTitans returns the session player's titans, generating the starter
// titan on first use.
func (h *GameHandler) ListTitans(c *gin.Context) {
	playerID, _ := playerFrom(c)
	if _, err := h.roster.GetOrCreate(c.Request.Context(), playerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchTitans})
		return
	}
	titans, err := h.roster.ForPlayer(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchTitans})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(titans)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchTitans})
		return
	}
	c.JSON(http.StatusOK, out)
}

// CurrentGame returns the most recent game the session player joined.
func (h *GameHandler) CurrentGame(c *gin.Context) {
	playerID, _ := playerFrom(c)
	g, ok := h.games.GetGameByParticipant(playerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrNoActiveGame})
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetGame returns a game by ID. Only participants may read it.
func (h *GameHandler) GetGame(c *gin.Context) {
	playerID, _ := playerFrom(c)
	g, ok := h.games.GetGame(c.Param("gameID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrGameNotFound})
		return
	}
	if !g.IsParticipant(playerID) {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisGame})
		return
	}
	c.JSON(http.StatusOK, g)
}
