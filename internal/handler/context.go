package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/session"
)

// ContextSession is the gin context key of the authenticated session.
const ContextSession = "admin_session"

func SetSession(c *gin.Context, sess *model.Session) {
	c.Set(ContextSession, sess)
}

// Session returns the authenticated session, or nil on public routes.
func Session(c *gin.Context) *model.Session {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*model.Session); ok {
			return sess
		}
	}
	return nil
}

// Actor identifies the admin behind the request.
func Actor(c *gin.Context) model.Actor {
	sess := Session(c)
	if sess == nil {
		return model.Actor{IPAddress: c.ClientIP()}
	}
	return session.Actor(sess, c.ClientIP())
}
