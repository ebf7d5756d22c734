package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pollsapi/internal/config"
	"pollsapi/internal/core"
	"pollsapi/internal/middleware"
	"pollsapi/internal/models"
)

type UserHandler struct {
	db       *gorm.DB
	validate core.Validator
}

func NewUserHandler(db *gorm.DB, cfg *config.Config) *UserHandler {
	return &UserHandler{db: db, validate: core.NewValidator(cfg.Limits)}
}

// GetUserProfile returns a user's public profile
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var pollCount int64
	h.db.Model(&models.Poll{}).Where("owner_id = ? AND is_public = ?", user.ID, true).Count(&pollCount)

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"full_name":  user.FullName,
		"poll_count": pollCount,
		"created_at": user.CreatedAt,
	})
}

// UpdateMe applies a partial update to the caller's own profile. Omitted
// fields are left untouched.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		FullName *string `json:"full_name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, *userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if input.Username != nil {
		if err := h.validate.Username(*input.Username); err != nil {
			writeError(c, err)
			return
		}
		var count int64
		if err := h.db.Model(&models.User{}).Where("username = ? AND id <> ?", *input.Username, user.ID).Count(&count).Error; err != nil {
			writeError(c, core.Internal(err))
			return
		}
		if count > 0 {
			writeError(c, core.Conflict(core.CodeDuplicateUsername, "username already registered"))
			return
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		if err := h.validate.Email(*input.Email); err != nil {
			writeError(c, err)
			return
		}
		var count int64
		if err := h.db.Model(&models.User{}).Where("email = ? AND id <> ?", *input.Email, user.ID).Count(&count).Error; err != nil {
			writeError(c, core.Internal(err))
			return
		}
		if count > 0 {
			writeError(c, core.Conflict(core.CodeDuplicateEmail, "email already registered"))
			return
		}
		user.Email = *input.Email
	}
	if input.FullName != nil {
		if err := h.validate.FullName(*input.FullName); err != nil {
			writeError(c, err)
			return
		}
		user.FullName = *input.FullName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := h.db.Save(&user).Error; err != nil {
		writeError(c, core.Internal(err))
		return
	}

	c.JSON(http.StatusOK, user)
}
