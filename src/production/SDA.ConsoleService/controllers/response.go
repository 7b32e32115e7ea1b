package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accessor "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Accessor"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	membership "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Membership"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
	view "gitlab.com/sdamanager/sda.web_console/src/production/SDA.View"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/middleware"
)

// ErrNoAddress is returned when an action needs the manager but no address is set
var ErrNoAddress = errors.New("SDA Manager address is not set")

// invalid builds the application error shown to the operator when input is missing
func invalid(message string) error {
	return &accessor.ApplicationError{Code: sdamodels.CodeError, Message: message}
}

// StatusFor maps an error to the HTTP status of its envelope
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoAddress):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, view.ErrContainerNotFound),
		errors.Is(err, view.ErrRowNotFound),
		errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case accessor.IsTransport(err):
		return http.StatusBadGateway
	case accessor.IsApplication(err),
		errors.Is(err, session.ErrNotSelected),
		errors.Is(err, session.ErrNoEditor),
		errors.Is(err, membership.ErrNotFound),
		errors.Is(err, view.ErrNoHandler):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondOK(c *gin.Context, data interface{}) {
	env := sdamodels.Envelope{Code: sdamodels.CodeSuccess}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, sdamodels.Envelope{Code: sdamodels.CodeError, Message: err.Error()})
			return
		}
		env.Data = raw
	}
	c.JSON(http.StatusOK, env)
}

// respondError writes err as an error envelope. Application errors carry their own
// message and, for partial group failures, the per-member details.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := StatusFor(err)
	env := sdamodels.Envelope{Code: sdamodels.CodeError, Message: err.Error()}
	if ae, ok := accessor.AsApplication(err); ok {
		env.Message = ae.Message
		env.Data = ae.Details
	}

	l := log.WithRequestID(middleware.GetRequestIDFromGinContext(c))
	if sess, serr := middleware.GetSessionFromGinContext(c); serr == nil {
		l = l.WithSession(sess.ID, sess.Address())
	}
	if status >= http.StatusInternalServerError {
		l.ErrorWithError(err, "request failed")
	} else {
		l.Logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	c.JSON(status, env)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, sdamodels.Envelope{Code: sdamodels.CodeError, Message: err.Error()})
}

// sessionOf returns the request's session, answering 500 when the middleware is missing
func sessionOf(c *gin.Context, log *logger.Logger) (*session.Session, bool) {
	sess, err := middleware.GetSessionFromGinContext(c)
	if err != nil {
		respondError(c, log, err)
		return nil, false
	}
	return sess, true
}
