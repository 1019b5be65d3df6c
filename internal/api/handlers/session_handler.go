package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interviewpro/backend/internal/api/middleware"
	"github.com/interviewpro/backend/internal/services"
	"github.com/interviewpro/backend/internal/utils"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type StartSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

type SessionResponse struct {
	Success  bool   `json:"success"`
	UniqueID string `json:"uniqueId"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

// StartNew creates a fresh practice session and hands back the shareable
// unique id the student uses to come back later.
func (h *SessionHandler) StartNew(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.StartNew", "name is required", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := middleware.IssueSessionCookie(c, sess.UniqueID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Success:  true,
		UniqueID: sess.UniqueID,
		Name:     sess.Name,
		Message:  "Session created successfully. Save this ID to continue later: " + sess.UniqueID,
	})
}

type ContinueSessionRequest struct {
	UniqueID string `json:"uniqueId" binding:"required"`
}

// Continue resumes an existing session by its unique id.
func (h *SessionHandler) Continue(c *gin.Context) {
	var req ContinueSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Continue", "uniqueId is required", err))
		return
	}

	sess, err := h.svc.Continue(c.Request.Context(), req.UniqueID)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := middleware.IssueSessionCookie(c, sess.UniqueID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Success:  true,
		UniqueID: sess.UniqueID,
		Name:     sess.Name,
		Message:  "Welcome back, " + sess.Name + "!",
	})
}

type ProfileResponse struct {
	Success   bool        `json:"success"`
	User      ProfileUser `json:"user"`
	SessionID string      `json:"sessionId"`
}

type ProfileUser struct {
	Name string `json:"name"`
}

func (h *SessionHandler) Profile(c *gin.Context) {
	uniqueID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Profile(c.Request.Context(), uniqueID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Success:   true,
		User:      ProfileUser{Name: sess.Name},
		SessionID: sess.UniqueID,
	})
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	uniqueID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.UpdateProfile", "name is required", err))
		return
	}

	if err := h.svc.UpdateName(c.Request.Context(), uniqueID, req.Name); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully"})
}

// End clears the session cookie. The session document is kept so the unique
// id still works later.
func (h *SessionHandler) End(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session ended"})
}
