package controller

import (
	"net/http"

	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/web/entity"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/middleware"
	"github.com/oplog/oplog/web/service"

	"github.com/gin-gonic/gin"
)

// StatsController serves the aggregations. Residents are always scoped to
// their own records; tutors and masters may pass ?owner=.
type StatsController struct {
	BaseController

	statsService *service.StatsService
}

func NewStatsController(g *gin.RouterGroup, stats *service.StatsService) *StatsController {
	a := &StatsController{statsService: stats}
	a.initRouter(g)
	return a
}

func (a *StatsController) initRouter(g *gin.RouterGroup) {
	g.GET("/categories", a.categories)
	g.GET("/roles", a.roles)
	g.GET("/monthly", a.monthly)
	g.GET("/progress", a.progress)
	g.GET("/ranking", middleware.RoleRequired(logbook.RoleTutor, logbook.RoleMaster), a.ranking)
}

func (a *StatsController) query(c *gin.Context) (string, int, bool) {
	var q entity.StatsQuery
	_ = c.ShouldBindQuery(&q)
	year, err := q.YearOrCurrent()
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "error.badParam", "Name==year"))
		return "", 0, false
	}
	return a.actor(c).ScopeOwner(q.Owner), year, true
}

func (a *StatsController) categories(c *gin.Context) {
	owner, _, ok := a.query(c)
	if !ok {
		return
	}
	counts, err := a.statsService.CountsByCategory(owner)
	jsonObj(c, counts, err)
}

func (a *StatsController) roles(c *gin.Context) {
	owner, _, ok := a.query(c)
	if !ok {
		return
	}
	counts, err := a.statsService.CountsByRole(owner)
	jsonObj(c, counts, err)
}

func (a *StatsController) monthly(c *gin.Context) {
	owner, year, ok := a.query(c)
	if !ok {
		return
	}
	months, err := a.statsService.MonthlyBreakdown(owner, year)
	jsonObj(c, months, err)
}

func (a *StatsController) progress(c *gin.Context) {
	owner, year, ok := a.query(c)
	if !ok {
		return
	}
	progress, err := a.statsService.Progress(owner, year)
	jsonObj(c, progress, err)
}

func (a *StatsController) ranking(c *gin.Context) {
	ranking, err := a.statsService.Ranking()
	jsonObj(c, ranking, err)
}
