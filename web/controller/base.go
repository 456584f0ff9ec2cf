// Package controller provides the HTTP handlers of the oplog JSON API.
package controller

import (
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/middleware"

	"github.com/gin-gonic/gin"
)

// BaseController provides helpers shared by all controllers.
type BaseController struct{}

// loginRequired rejects requests without a session actor, or whose actor
// verify no longer accepts.
func (a *BaseController) loginRequired(verify func(logbook.Actor) error) gin.HandlerFunc {
	return middleware.LoginRequired(func(c *gin.Context) string {
		return locale.I18n(c, "login.loginAgain")
	}, verify)
}

// actor returns the acting user of an authenticated request.
func (a *BaseController) actor(c *gin.Context) logbook.Actor {
	return middleware.Actor(c)
}
