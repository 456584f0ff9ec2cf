package controller

import (
	"net/http"
	"strconv"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/middleware"
	"github.com/oplog/oplog/web/service"

	"github.com/gin-gonic/gin"
)

// ProcedureController lists, adds and deletes the actor's procedures.
type ProcedureController struct {
	BaseController

	procedureService *service.ProcedureService
	userService      *service.UserService
}

func NewProcedureController(g *gin.RouterGroup, procedures *service.ProcedureService, users *service.UserService) *ProcedureController {
	a := &ProcedureController{procedureService: procedures, userService: users}
	a.initRouter(g)
	return a
}

func (a *ProcedureController) initRouter(g *gin.RouterGroup) {
	g.GET("/catalog", a.catalog)
	g.GET("/procedures", a.list)
	g.POST("/procedures", a.add)
	g.DELETE("/procedures/:seq", a.delete)
	g.GET("/owners", middleware.RoleRequired(logbook.RoleTutor, logbook.RoleMaster), a.owners)
}

func (a *ProcedureController) catalog(c *gin.Context) {
	jsonObj(c, gin.H{
		"categories": logbook.Catalog(),
		"roles":      logbook.OpRoles(),
	}, nil)
}

// procedureDTO is a stored procedure as the API returns it. Tutors only get
// the columns of the tutor view, with the role redacted.
type procedureDTO struct {
	Id    int    `json:"id"`
	SeqId int    `json:"seqId"`
	Owner string `json:"owner"`
	logbook.Entry
}

func toProcedureDTOs(actor logbook.Actor, ps []model.Procedure) []procedureDTO {
	out := make([]procedureDTO, len(ps))
	for i, p := range ps {
		out[i] = procedureDTO{Id: p.Id, SeqId: p.SeqId, Owner: p.Owner, Entry: p.Entry}
		if actor.Role == logbook.RoleTutor {
			out[i].Entry = logbook.Entry{
				Date:          p.Date,
				ProcedureName: p.ProcedureName,
				Role:          logbook.OpRole(logbook.RedactRole(p.Role)),
				PatientID:     p.PatientID,
				Category:      p.Category,
			}
		}
	}
	return out
}

func (a *ProcedureController) list(c *gin.Context) {
	var f logbook.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	actor := a.actor(c)
	ps, err := a.procedureService.List(actor, f)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, toProcedureDTOs(actor, ps), nil)
}

func (a *ProcedureController) add(c *gin.Context) {
	var e logbook.Entry
	if err := c.ShouldBind(&e); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	seq, err := a.procedureService.Insert(a.actor(c), e)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsgObj(c, locale.I18n(c, "procedure.added", "SeqId=="+strconv.Itoa(seq)), gin.H{"seqId": seq}, nil)
}

func (a *ProcedureController) delete(c *gin.Context) {
	seq, ok := intParam(c, "seq")
	if !ok {
		return
	}
	err := a.procedureService.DeleteOwn(a.actor(c), seq)
	jsonMsg(c, locale.I18n(c, "procedure.deleted", "SeqId=="+strconv.Itoa(seq)), err)
}

func (a *ProcedureController) owners(c *gin.Context) {
	names, err := a.userService.ListUsernames()
	jsonObj(c, names, err)
}
