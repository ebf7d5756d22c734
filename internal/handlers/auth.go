package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pollsapi/internal/auth"
	"pollsapi/internal/config"
	"pollsapi/internal/core"
	"pollsapi/internal/middleware"
	"pollsapi/internal/models"
)

type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	validate core.Validator
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, validate: core.NewValidator(cfg.Limits)}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.validate.Username(input.Username); err != nil {
		writeError(c, err)
		return
	}
	if err := h.validate.Email(input.Email); err != nil {
		writeError(c, err)
		return
	}
	if err := h.validate.FullName(input.FullName); err != nil {
		writeError(c, err)
		return
	}

	// Check if username or email already exists
	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		writeError(c, core.Internal(err))
		return
	}
	if count > 0 {
		writeError(c, core.Conflict(core.CodeDuplicateEmail, "email already registered"))
		return
	}
	if err := h.db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		writeError(c, core.Internal(err))
		return
	}
	if count > 0 {
		writeError(c, core.Conflict(core.CodeDuplicateUsername, "username already registered"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(c, core.Internal(err))
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		writeError(c, core.Internal(err))
		return
	}

	token, err := auth.GenerateToken(user.ID, []byte(h.cfg.JWTSecret), h.cfg.TokenTTL)
	if err != nil {
		writeError(c, core.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{Token: token, User: user})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	token, err := auth.GenerateToken(user.ID, []byte(h.cfg.JWTSecret), h.cfg.TokenTTL)
	if err != nil {
		writeError(c, core.Internal(err))
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db.First(&user, *userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
