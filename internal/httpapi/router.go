package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/larklabs/gastutor/internal/common"
	"github.com/larklabs/gastutor/internal/config"
	"github.com/larklabs/gastutor/internal/httpapi/handlers"
	"github.com/larklabs/gastutor/internal/httpapi/middleware"
	"github.com/larklabs/gastutor/internal/store/rabbitmq"
	"github.com/larklabs/gastutor/internal/store/redisstore"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, rabbit)

	r.GET("/ping", h.Ping)

	// users + auth
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	// tier catalog, provider status and the canned local chat are public
	r.GET("/tutors", h.ListTutors)
	r.GET("/tutors/:level", h.GetTutor)
	r.GET("/ai/status", h.AIStatus)
	r.GET("/chat/local", h.LocalChatInfo)
	r.POST("/chat/local", h.LocalChat)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// session lifecycle (JWT required)
	authGroup.POST("/tutor/sessions", h.StartSession)
	authGroup.GET("/tutor/sessions/active", h.ActiveSession)
	authGroup.POST("/tutor/sessions/end", h.EndSession)
	authGroup.GET("/tutor/sessions/history", h.SessionHistory)
	authGroup.PATCH("/tutor/sessions/context", h.UpdateSessionContext)
	authGroup.GET("/tutor/sessions/:session_id/messages", h.ListSessionMessages)

	// conversation turns
	authGroup.POST("/tutor/messages", h.SendTutorMessage)
	authGroup.POST("/tutor/messages/async", h.SendTutorMessageAsync)
	authGroup.GET("/tutor/jobs/:job_id", h.GetTutorJob)

	// subscription + billing
	authGroup.GET("/subscription", h.GetSubscription)
	authGroup.POST("/subscription/activate", h.ActivateSubscription)
	authGroup.POST("/billing/checkout", h.CreateCheckout)
	authGroup.GET("/billing/checkout/:session_id", h.GetCheckout)

	return r
}
