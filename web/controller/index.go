package controller

import (
	"errors"
	"net/http"

	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/middleware"
	"github.com/oplog/oplog/web/service"
	"github.com/oplog/oplog/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username      string `json:"username" form:"username"`
	Password      string `json:"password" form:"password"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
}

// TutorForm enters the shared tutor mode.
type TutorForm struct {
	Name       string `json:"name" form:"name"`
	Passphrase string `json:"passphrase" form:"passphrase"`
}

// ResetForm changes a password by answering the security question.
type ResetForm struct {
	Username    string `json:"username" form:"username"`
	Answer      string `json:"answer" form:"answer"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

// IndexController handles login, registration and logout.
type IndexController struct {
	BaseController

	userService   *service.UserService
	sessionMaxAge int
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup, users *service.UserService, sessionMaxAge int) *IndexController {
	a := &IndexController{userService: users, sessionMaxAge: sessionMaxAge}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/logout", a.logout)

	limit := middleware.DefaultRateLimitConfig()
	limit.Message = func(c *gin.Context) string { return locale.I18n(c, "error.rateLimit") }
	throttle := middleware.RateLimitMiddleware(limit)

	g.POST("/login", throttle, a.login)
	g.POST("/register", throttle, a.register)
	g.POST("/tutor", throttle, a.tutor)
	g.GET("/reset/question", throttle, a.securityQuestion)
	g.POST("/reset", throttle, a.resetPassword)
}

func (a *IndexController) startSession(c *gin.Context, actor logbook.Actor) bool {
	if err := session.SetMaxAge(c, a.sessionMaxAge*60); err != nil {
		logger.Warning("Unable to set session max age: ", err)
	}
	if err := session.SetLoginActor(c, actor); err != nil {
		logger.Warning("Unable to save session: ", err)
		jsonErr(c, err)
		return false
	}
	return true
}

func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	if form.Username == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.emptyUsername"))
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.emptyPassword"))
		return
	}

	actor, err := a.userService.Authenticate(form.Username, form.Password, form.TwoFactorCode)
	if err != nil {
		logger.Warningf("wrong login for %q from %s", form.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusUnauthorized, false, locale.I18n(c, "login.wrongCredentials"))
		return
	}
	if !a.startSession(c, actor) {
		return
	}
	logger.Infof("%s logged in successfully, Ip Address: %s", actor.Name, getRemoteIp(c))
	jsonMsgObj(c, locale.I18n(c, "login.success"), actor, nil)
}

func (a *IndexController) register(c *gin.Context) {
	var form service.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	user, err := a.userService.Register(form)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsgObj(c, locale.I18n(c, "register.success", "Username=="+user.Username), user, nil)
}

func (a *IndexController) tutor(c *gin.Context) {
	var form TutorForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	actor, err := a.userService.EnterTutorMode(form.Name, form.Passphrase)
	switch {
	case errors.Is(err, logbook.ErrForbidden):
		pureJsonMsg(c, http.StatusForbidden, false, locale.I18n(c, "tutor.disabled"))
		return
	case err != nil:
		logger.Warningf("wrong tutor passphrase from %s", getRemoteIp(c))
		pureJsonMsg(c, http.StatusUnauthorized, false, locale.I18n(c, "tutor.wrongPassphrase"))
		return
	}
	if !a.startSession(c, actor) {
		return
	}
	logger.Infof("tutor %s entered tutor mode, Ip Address: %s", actor.Name, getRemoteIp(c))
	jsonMsgObj(c, locale.I18n(c, "tutor.success"), actor, nil)
}

func (a *IndexController) securityQuestion(c *gin.Context) {
	question, err := a.userService.SecurityQuestion(c.Query("username"))
	jsonMsgObj(c, locale.I18n(c, "reset.question"), question, err)
}

func (a *IndexController) resetPassword(c *gin.Context) {
	var form ResetForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "login.invalidForm"))
		return
	}
	err := a.userService.ResetPassword(form.Username, form.Answer, form.NewPassword)
	jsonMsg(c, locale.I18n(c, "reset.success"), err)
}

func (a *IndexController) logout(c *gin.Context) {
	if actor := session.GetLoginActor(c); actor != nil {
		logger.Infof("%s logged out successfully", actor.Name)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session: ", err)
	}
	jsonMsg(c, locale.I18n(c, "login.logout"), nil)
}
