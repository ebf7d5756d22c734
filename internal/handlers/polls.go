package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pollsapi/internal/config"
	"pollsapi/internal/core"
	"pollsapi/internal/middleware"
)

type PollHandler struct {
	svc    *core.Service
	limits config.Limits
}

func NewPollHandler(svc *core.Service, limits config.Limits) *PollHandler {
	return &PollHandler{svc: svc, limits: limits}
}

// ListPolls returns a page of polls visible to the caller.
func (h *PollHandler) ListPolls(c *gin.Context) {
	params, err := h.parseListParams(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.svc.ListPolls(c.Request.Context(), params, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListMyPolls returns the caller's own polls, public or not.
func (h *PollHandler) ListMyPolls(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	params, err := h.parseListParams(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.svc.ListOwnPolls(c.Request.Context(), params, *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPoll returns a single poll with its options
func (h *PollHandler) GetPoll(c *gin.Context) {
	pollID, ok := pathID(c)
	if !ok {
		return
	}

	poll, err := h.svc.GetPoll(c.Request.Context(), pollID, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// CreatePoll creates a new poll owned by the caller
func (h *PollHandler) CreatePoll(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		IsActive    *bool  `json:"is_active"`
		IsPublic    *bool  `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := core.CreatePollInput{
		Title:       input.Title,
		Description: input.Description,
		IsActive:    true,
		IsPublic:    true,
	}
	if input.IsActive != nil {
		in.IsActive = *input.IsActive
	}
	if input.IsPublic != nil {
		in.IsPublic = *input.IsPublic
	}

	poll, err := h.svc.CreatePoll(c.Request.Context(), *userID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

// UpdatePoll applies a partial update; owner only
func (h *PollHandler) UpdatePoll(c *gin.Context) {
	pollID, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poll, err := h.svc.UpdatePoll(c.Request.Context(), pollID, middleware.CurrentUserID(c), core.UpdatePollInput{
		Title:       input.Title,
		Description: input.Description,
		IsActive:    input.IsActive,
		IsPublic:    input.IsPublic,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// DeletePoll deletes a poll and everything under it; owner only
func (h *PollHandler) DeletePoll(c *gin.Context) {
	pollID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeletePoll(c.Request.Context(), pollID, middleware.CurrentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted successfully"})
}

// AddOption appends an option to an active poll; owner only
func (h *PollHandler) AddOption(c *gin.Context) {
	pollID, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	option, err := h.svc.AddOption(c.Request.Context(), pollID, middleware.CurrentUserID(c), input.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, option)
}

// Vote records the caller's single vote on a poll option
func (h *PollHandler) Vote(c *gin.Context) {
	pollID, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		OptionID int `json:"option_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.svc.CastVote(c.Request.Context(), pollID, input.OptionID, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vote)
}

func (h *PollHandler) parseListParams(c *gin.Context) (core.ListParams, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return core.ListParams{}, err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return core.ListParams{}, err
	}

	params, cerr := core.NewListParams(page, size, h.limits)
	if cerr != nil {
		return core.ListParams{}, cerr
	}

	params.Search = strings.TrimSpace(c.Query("search"))

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return core.ListParams{}, core.Invalid("is_active", "must be a boolean")
		}
		params.IsActive = &active
	}
	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := strconv.Atoi(raw)
		if err != nil || ownerID < 1 {
			return core.ListParams{}, core.Invalid("owner_id", "must be a positive integer")
		}
		params.OwnerID = &ownerID
	}

	sort, cerr := core.ParseSort(c.Query("sort"))
	if cerr != nil {
		return core.ListParams{}, cerr
	}
	params.Sort = sort

	return params, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.Invalid(name, "must be an integer")
	}
	return value, nil
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		return 0, false
	}
	return id, true
}
