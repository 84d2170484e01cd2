package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo"

	"github.com/muhammadolammi/facultyhire/internal/apperrors"
	"github.com/muhammadolammi/facultyhire/internal/auth"
	"github.com/muhammadolammi/facultyhire/internal/metrics"
)

const principalKey = "principal"

type errorResponse struct {
	Detail    string         `json:"detail"`
	Code      apperrors.Code `json:"code"`
	Retryable bool           `json:"retryable,omitempty"`
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperrors.HTTPStatus(err)
	body := errorResponse{
		Detail:    apperrors.MessageOf(err),
		Code:      apperrors.CodeOf(err),
		Retryable: apperrors.IsRetryable(err),
	}

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		body.Detail = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			body.Detail = msg
		}
		body.Code = codeForStatus(he.Code)
	}

	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed", map[string]interface{}{
			"method": c.Request().Method,
			"path":   c.Path(),
			"status": status,
		})
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.log.WithError(err).Warn("could not write error response", nil)
	}
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeInvalidInput
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	}
	return apperrors.CodeInternal
}

func (s *Server) requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return nil
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := s.deps.Auth.Authenticate(c.Request().Context(), bearerToken(c))
		if err != nil {
			return err
		}
		c.Set(principalKey, p)
		return next(c)
	}
}

// optionalAuth attaches the principal when a valid token is present and
// otherwise lets the request through anonymously.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := bearerToken(c); token != "" && s.deps.Auth != nil {
			if p, err := s.deps.Auth.Authenticate(c.Request().Context(), token); err == nil {
				c.Set(principalKey, p)
			}
		}
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := principal(c)
		if p == nil || !p.IsAdmin {
			return apperrors.New(apperrors.CodeForbidden, "admin access required")
		}
		return next(c)
	}
}

func principal(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}
