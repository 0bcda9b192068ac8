package controllers

import (
	"errors"
	"net/http"

	"debatecraft/catalog"
	"debatecraft/pkg/logger"
	"debatecraft/progression"
	"debatecraft/store"
	"debatecraft/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ModuleController serves the learning module catalog and records
// completions.
type ModuleController struct {
	Store store.ProfileStore
	Hub   *websocket.ProgressHub
}

type completeModuleRequest struct {
	ProfileID        string `json:"profileId" binding:"required"`
	Correct          int    `json:"correct"`
	Total            int    `json:"total" binding:"required"`
	FallaciesSpotted int    `json:"fallaciesSpotted"`
}

// ListModules returns the module catalog.
func (mc *ModuleController) ListModules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modules": catalog.Modules})
}

// GetModule returns one module with its full content.
func (mc *ModuleController) GetModule(c *gin.Context) {
	mod, ok := catalog.ModuleByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}
	c.JSON(http.StatusOK, mod)
}

// CompleteModule records a quiz result against the profile. XP is
// proportional to the quiz score; repeating an already-completed module
// awards nothing but still succeeds. Prerequisites are enforced here, not
// trusted from the client.
func (mc *ModuleController) CompleteModule(c *gin.Context) {
	mod, ok := catalog.ModuleByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
		return
	}

	var req completeModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Total <= 0 || req.Correct < 0 || req.Correct > req.Total || req.FallaciesSpotted < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz result"})
		return
	}

	ctx := c.Request.Context()
	before, err := mc.Store.GetProfile(ctx, req.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	if !catalog.PrerequisiteMet(before, mod) {
		c.JSON(http.StatusConflict, gin.H{"error": "Prerequisite module not completed", "prerequisite": mod.Prerequisite})
		return
	}

	alreadyCompleted := before.HasCompletedModule(mod.ID)
	xp := progression.QuizXP(req.Correct, req.Total, mod.XPReward)

	after, err := mc.Store.ApplyModuleCompletion(ctx, req.ProfileID, mod.ID, xp)
	if err != nil {
		logger.Log.Error("failed to record module completion",
			zap.String("moduleId", mod.ID), zap.String("profileId", req.ProfileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record completion"})
		return
	}

	if !alreadyCompleted && req.FallaciesSpotted > 0 {
		after, err = mc.Store.RecordFallaciesSpotted(ctx, req.ProfileID, req.FallaciesSpotted)
		if err != nil {
			logger.Log.Error("failed to record fallacies spotted",
				zap.String("profileId", req.ProfileID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record completion"})
			return
		}
	}

	xpGained := 0
	if !alreadyCompleted {
		xpGained = xp
		if mc.Hub != nil {
			mc.Hub.Broadcast(websocket.ProgressEvent{
				Type:      "module_completed",
				ProfileID: after.ID,
				ModuleID:  mod.ID,
				XP:        xpGained,
			})
		}
		broadcastProgress(mc.Hub, before, after)
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":          after,
		"xpGained":         xpGained,
		"alreadyCompleted": alreadyCompleted,
	})
}
