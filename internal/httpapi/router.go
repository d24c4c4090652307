package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine. Routes under /session act on the voting
// selected with PUT /session/voting.
func NewRouter(h *Handlers, adminTokenHash string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger.Named("http-access")))

	admin := AdminAuth(adminTokenHash, logger.Named("http-admin"))

	router.GET("/health", h.Health)

	router.GET("/votings", h.ListVotings)
	router.POST("/votings", admin, h.CreateVoting)
	router.DELETE("/votings/:name", admin, h.DeleteVoting)

	votingRoutes := router.Group("/votings/:name")
	votingRoutes.POST("/reset", admin, h.ResetVoting)
	votingRoutes.POST("/ballots", h.SubmitBallot)
	votingRoutes.GET("/ballots", admin, h.ListBallots)
	votingRoutes.GET("/ranking", h.Ranking)
	votingRoutes.GET("/ranking/export", h.ExportRanking)

	sessionRoutes := router.Group("/session")
	sessionRoutes.PUT("/voting", h.SelectVoting)
	sessionRoutes.GET("/voting", h.ActiveVoting)
	sessionRoutes.DELETE("/voting", admin, h.DeleteVoting)
	sessionRoutes.POST("/ballots", h.SubmitBallot)
	sessionRoutes.GET("/ranking", h.Ranking)
	sessionRoutes.GET("/ranking/export", h.ExportRanking)
	sessionRoutes.POST("/reset", admin, h.ResetVoting)

	return router
}
