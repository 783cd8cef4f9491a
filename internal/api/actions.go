package api

import (
	"net/http"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/game"
	"github.com/ericogr/titan-arena/internal/logging"

	"github.com/gin-gonic/gin"
)

type ActionPayload struct {
	Kind      game.ActionKind `json:"type"`
	TargetID  string          `json:"targetId,omitempty"`
	AbilityID string          `json:"abilityId,omitempty"`
}

// SubmitAction commits the session player's action for the current round.
// The response carries the round result once both players are locked in.
func (h *GameHandler) SubmitAction(c *gin.Context) {
	var req ActionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if !req.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAction})
		return
	}
	playerID, _ := playerFrom(c)
	gameID := c.Param("gameID")

	g, result := h.games.SubmitAction(gameID, playerID, game.Action{Kind: req.Kind, TargetID: req.TargetID, AbilityID: req.AbilityID})
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrGameNotFound})
		return
	}
	if !g.IsParticipant(playerID) {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisGame})
		return
	}
	logging.Debug("action submitted over http", logging.Fields{constants.LogFieldGameID: gameID, constants.LogFieldPlayerID: playerID, constants.LogFieldAction: string(req.Kind)})
	h.publish(g, result)
	c.JSON(http.StatusOK, gin.H{"game": g, "roundResult": result})
}
