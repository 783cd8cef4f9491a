package api

import (
	"errors"
	"net/http"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/logging"
	"github.com/ericogr/titan-arena/internal/service"

	"github.com/gin-gonic/gin"
)

// LeaveGame forfeits the session player's game; the opponent wins.
func (h *GameHandler) LeaveGame(c *gin.Context) {
	playerID, _ := playerFrom(c)
	gameID := c.Param("gameID")

	g, err := h.games.Forfeit(gameID, playerID)
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrGameNotFound})
		return
	case errors.Is(err, service.ErrPlayerNotInGame):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisGame})
		return
	case errors.Is(err, service.ErrGameFinished):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrGameFinished})
		return
	case err != nil:
		logging.Error("failed to leave game", err, logging.Fields{constants.LogFieldGameID: gameID, constants.LogFieldPlayerID: playerID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	h.publish(g, nil)
	c.JSON(http.StatusOK, g)
}
