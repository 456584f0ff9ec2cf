package controller

import (
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/web/service"

	"github.com/gin-gonic/gin"
)

// APIController groups the routes that need a logged-in actor.
type APIController struct {
	BaseController

	procedureController *ProcedureController
	statsController     *StatsController
	exportController    *ExportController
	userAdminController *UserAdminController
}

// NewAPIController creates a new APIController instance and initializes its routes.
func NewAPIController(g *gin.RouterGroup, services *service.Services, logs LogSource) *APIController {
	a := &APIController{}
	a.initRouter(g, services, logs)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup, services *service.Services, logs LogSource) {
	api := g.Group("/api")
	api.Use(a.loginRequired(services.Users.VerifyActor))

	a.procedureController = NewProcedureController(api, services.Procedures, services.Users)
	a.statsController = NewStatsController(api.Group("/stats"), services.Stats)
	a.exportController = NewExportController(api.Group("/export"), services.Reports)
	a.userAdminController = NewUserAdminController(api.Group("/admin"), services.UserAdmin, services.Procedures, logs)
}

// LogSource returns the newest buffered log lines at or above level.
type LogSource func(count int, level string) []string

// DefaultLogSource reads the in-memory buffer of the logger package.
func DefaultLogSource(count int, level string) []string {
	return logger.GetLogs(count, level)
}
