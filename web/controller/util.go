package controller

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/web/entity"
	"github.com/oplog/oplog/web/locale"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonObj sends a JSON response with an object and error status.
func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj sends a successful response, or the localized error of err
// with the status code it maps to.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	if err != nil {
		jsonErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: msg, Obj: obj})
}

func jsonErr(c *gin.Context, err error) {
	status, key, params := errorMessage(err)
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Method, " ", c.Request.URL.Path, " ", locale.I18n(c, "fail"), ": ", err)
	} else {
		logger.Debugf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	pureJsonMsg(c, status, false, locale.I18n(c, key, params...))
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// errorMessage maps the logbook error taxonomy to a status code and a
// translation key with its parameters.
func errorMessage(err error) (int, string, []string) {
	var verr *logbook.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "error.validation", []string{"Field==" + verr.Field, "Reason==" + verr.Reason}
	case errors.Is(err, logbook.ErrFormat):
		return http.StatusBadRequest, "error.format", nil
	case errors.Is(err, logbook.ErrNotFound):
		return http.StatusNotFound, "error.notFound", nil
	case errors.Is(err, logbook.ErrConflict):
		return http.StatusConflict, "error.conflict", nil
	case errors.Is(err, logbook.ErrForbidden):
		return http.StatusForbidden, "error.forbidden", nil
	case errors.Is(err, logbook.ErrUnauthorized):
		return http.StatusUnauthorized, "error.unauthorized", nil
	}
	return http.StatusInternalServerError, "error.internal", nil
}

// intParam reads a positive integer path parameter, answering 400 itself
// when it is missing or malformed.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		pureJsonMsg(c, http.StatusBadRequest, false, locale.I18n(c, "error.badParam", "Name=="+name))
		return 0, false
	}
	return n, true
}
