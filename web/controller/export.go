package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/oplog/oplog/export"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/web/entity"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/service"

	"github.com/gin-gonic/gin"
)

// ExportController downloads the actor's listing as a file.
type ExportController struct {
	BaseController

	reportService *service.ReportService
}

func NewExportController(g *gin.RouterGroup, reports *service.ReportService) *ExportController {
	a := &ExportController{reportService: reports}
	a.initRouter(g)
	return a
}

func (a *ExportController) initRouter(g *gin.RouterGroup) {
	g.GET("/:format", a.download)
}

func (a *ExportController) download(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "error.badParam", "Name==format"))
		return
	}
	var q entity.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	var view logbook.View
	if q.View != "" {
		v, ok := logbook.ParseView(q.View)
		if !ok {
			pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "error.badParam", "Name==view"))
			return
		}
		view = v
	}

	actor := a.actor(c)
	table, err := a.reportService.Table(actor, view, q.Filter)
	if err != nil {
		jsonErr(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, table, a.reportService.Title(actor)); err != nil {
		jsonErr(c, err)
		return
	}

	owner := actor.Name
	if actor.Role.SeesAll() {
		owner = ""
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(owner, format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
