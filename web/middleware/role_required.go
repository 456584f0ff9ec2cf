// Package middleware holds gin middleware shared by the oplog controllers.
package middleware

import (
	"errors"
	"net/http"

	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/web/entity"
	"github.com/oplog/oplog/web/session"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key under which the acting user is stored.
const ActorKey = "actor"

// LoginRequired aborts with 401 unless the session carries an actor, and
// puts the actor into the gin context for the handlers. When verify is set,
// an actor it rejects with ErrUnauthorized has its session cleared.
func LoginRequired(msg func(c *gin.Context) string, verify func(logbook.Actor) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := session.GetLoginActor(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Success: false, Msg: msg(c)})
			return
		}
		if verify != nil {
			if err := verify(*actor); errors.Is(err, logbook.ErrUnauthorized) {
				logger.Infof("session of %s is no longer valid: %v", actor.Name, err)
				if err := session.ClearSession(c); err != nil {
					logger.Warning("Unable to clear session: ", err)
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Success: false, Msg: msg(c)})
				return
			} else if err != nil {
				logger.Error("verify session err: ", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		c.Set(ActorKey, *actor)
		c.Next()
	}
}

// RoleRequired checks that the actor put in the context by LoginRequired has
// one of the given roles.
func RoleRequired(roles ...logbook.Role) gin.HandlerFunc {
	allowed := make(map[logbook.Role]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		v, exists := c.Get(ActorKey)
		if !exists {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		actor, ok := v.(logbook.Actor)
		if !ok || !allowed[actor.Role] {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// Actor returns the actor set by LoginRequired.
func Actor(c *gin.Context) logbook.Actor {
	v, _ := c.Get(ActorKey)
	actor, _ := v.(logbook.Actor)
	return actor
}
