package controller

import (
	"net/http"
	"strconv"

	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/middleware"
	"github.com/oplog/oplog/web/service"

	"github.com/gin-gonic/gin"
)

// UserAdminController is the master-only administration API.
type UserAdminController struct {
	BaseController

	svc        *service.UserAdminService
	procedures *service.ProcedureService
	logs       LogSource
}

func NewUserAdminController(admin *gin.RouterGroup, svc *service.UserAdminService, procedures *service.ProcedureService, logs LogSource) *UserAdminController {
	a := &UserAdminController{svc: svc, procedures: procedures, logs: logs}

	admin.Use(middleware.RoleRequired(logbook.RoleMaster))
	{
		admin.GET("/users", a.list)
		admin.POST("/users", a.create)
		admin.DELETE("/users/:id", a.deleteUser)
		admin.PATCH("/procedures/:id", a.updateProcedure)
		admin.DELETE("/procedures/:id", a.deleteProcedure)
		admin.GET("/logs", a.getLogs)
	}
	return a
}

func (a *UserAdminController) list(c *gin.Context) {
	users, err := a.svc.ListUsers()
	jsonObj(c, users, err)
}

type createReq struct {
	Username string       `json:"username" form:"username"`
	Password string       `json:"password" form:"password"`
	Role     logbook.Role `json:"role" form:"role"`
}

func (a *UserAdminController) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBind(&req); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	role, ok := logbook.ParseRole(string(req.Role))
	if !ok {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "error.badParam", "Name==role"))
		return
	}
	user, err := a.svc.CreateUser(req.Username, req.Password, role)
	jsonMsgObj(c, locale.I18n(c, "success"), user, err)
}

func (a *UserAdminController) deleteUser(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	err := a.svc.DeleteUser(a.actor(c), id)
	jsonMsg(c, locale.I18n(c, "user.deleted"), err)
}

func (a *UserAdminController) updateProcedure(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var patch logbook.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	p, err := a.procedures.UpdateFields(a.actor(c), id, patch)
	jsonMsgObj(c, locale.I18n(c, "procedure.updated"), p, err)
}

func (a *UserAdminController) deleteProcedure(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	err := a.procedures.DeleteByID(a.actor(c), id)
	jsonMsg(c, locale.I18n(c, "procedure.removed"), err)
}

func (a *UserAdminController) getLogs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 {
		count = 100
	}
	jsonObj(c, a.logs(count, c.DefaultQuery("level", "info")), nil)
}
