package controllers

import (
	"errors"
	"net/http"

	"debatecraft/catalog"
	"debatecraft/models"
	"debatecraft/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileController serves user profiles and the achievement catalog.
type ProfileController struct {
	Store store.ProfileStore
}

type createProfileRequest struct {
	ID         string            `json:"id"`
	Name       string            `json:"name" binding:"required"`
	Email      string            `json:"email"`
	GradeLevel models.GradeLevel `json:"gradeLevel"`
}

// GetProfile returns one profile.
func (pc *ProfileController) GetProfile(c *gin.Context) {
	p, err := pc.Store.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProfile creates a profile. The id is generated unless the caller
// supplies one, which lets a frontend reuse its own identity scheme.
func (pc *ProfileController) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	p := &models.UserProfile{
		ID:         req.ID,
		Name:       req.Name,
		Email:      req.Email,
		GradeLevel: req.GradeLevel,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	created, err := pc.Store.CreateProfile(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListAchievements returns the achievement catalog without the unlock
// predicates.
func (pc *ProfileController) ListAchievements(c *gin.Context) {
	defs := catalog.Achievements
	out := make([]models.Achievement, 0, len(defs))
	for _, d := range defs {
		out = append(out, models.Achievement{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Icon:        d.Icon,
			Rarity:      d.Rarity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out})
}
