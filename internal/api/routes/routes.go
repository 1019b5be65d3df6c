package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/interviewpro/backend/internal/api/handlers"
	"github.com/interviewpro/backend/internal/api/middleware"
)

type Deps struct {
	Session   *handlers.SessionHandler
	Space     *handlers.SpaceHandler
	Interview *handlers.InterviewHandler
	Live      *handlers.LiveHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// session bootstrap is open; everything else needs the session cookie
	api.POST("/sessions/start-new", d.Session.StartNew)
	api.POST("/sessions/continue", d.Session.Continue)

	auth := api.Group("/")
	auth.Use(middleware.SessionAuth())

	auth.GET("/sessions/profile", d.Session.Profile)
	auth.PUT("/sessions/update-profile", d.Session.UpdateProfile)
	auth.POST("/sessions/end", d.Session.End)

	auth.POST("/spaces/create", d.Space.Create)
	auth.GET("/spaces", d.Space.List)
	auth.GET("/spaces/:id", d.Space.Get)
	auth.GET("/spaces/:id/resume", d.Space.Resume)

	auth.GET("/interview/:spaceId/:roundName/generate-questions", d.Interview.GenerateQuestions)
	auth.POST("/interview/:spaceId/:roundName/finish", d.Interview.FinishRound)
	auth.GET("/interview/:spaceId/:roundName/questions-answers", d.Interview.QuestionAnswers)

	// WebSocket: server-driven live round
	auth.GET("/interview/:spaceId/:roundName/live", d.Live.RoundWS)
}
