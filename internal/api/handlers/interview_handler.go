package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interviewpro/backend/internal/services"
	"github.com/interviewpro/backend/internal/utils"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

// GenerateQuestions starts (or restarts) a round and returns its question
// list in interview order.
func (h *InterviewHandler) GenerateQuestions(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaceID, ok := parseSpaceID(c, c.Param("spaceId"))
	if !ok {
		return
	}
	roundName := c.Param("roundName")

	questions, err := h.svc.StartRound(c.Request.Context(), studentID, spaceID, roundName)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "questions": questions})
}

type FinishRoundRequest struct {
	Answers []services.Answer `json:"answers" binding:"required"`
}

// FinishRound stores the answers and schedules summary generation. The
// summary shows up on the space once the worker finishes.
func (h *InterviewHandler) FinishRound(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaceID, ok := parseSpaceID(c, c.Param("spaceId"))
	if !ok {
		return
	}
	roundName := c.Param("roundName")

	var req FinishRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.FinishRound", "answers are required", err))
		return
	}

	if err := h.svc.FinishRound(c.Request.Context(), studentID, spaceID, roundName, req.Answers); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Answers saved. The round summary is being generated.",
	})
}

func (h *InterviewHandler) QuestionAnswers(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaceID, ok := parseSpaceID(c, c.Param("spaceId"))
	if !ok {
		return
	}
	roundName := c.Param("roundName")

	qas, err := h.svc.ListQuestionAnswers(c.Request.Context(), studentID, spaceID, roundName)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "questionsAnswers": qas})
}
