// Package session keeps the acting user in the signed session cookie.
package session

import (
	"encoding/gob"

	"github.com/oplog/oplog/logbook"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginActor = "LOGIN_ACTOR"
	// CookieName is the name of the session cookie.
	CookieName = "oplog"
)

func init() {
	gob.Register(logbook.Actor{})
}

func SetLoginActor(c *gin.Context, actor logbook.Actor) error {
	s := sessions.Default(c)
	s.Set(loginActor, actor)
	return s.Save()
}

// SetMaxAge sets the session lifetime in seconds.
func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// GetLoginActor returns the logged-in actor, or nil.
func GetLoginActor(c *gin.Context) *logbook.Actor {
	s := sessions.Default(c)
	if obj := s.Get(loginActor); obj != nil {
		if actor, ok := obj.(logbook.Actor); ok && actor.Name != "" {
			return &actor
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginActor(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	return nil
}
