package handlers

import (
	"gorm.io/gorm"

	"pollsapi/internal/config"
	"pollsapi/internal/core"
	"pollsapi/internal/store"
)

// Handler combines all handler types
type Handler struct {
	Auth *AuthHandler
	User *UserHandler
	Poll *PollHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	polls := store.NewPollStore(db)
	votes := store.NewVoteStore(db)
	service := core.NewService(polls, votes, cfg.Limits)

	return &Handler{
		Auth: NewAuthHandler(db, cfg),
		User: NewUserHandler(db, cfg),
		Poll: NewPollHandler(service, cfg.Limits),
	}
}
