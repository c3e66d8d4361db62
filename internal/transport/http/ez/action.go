package ez

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/domain"
	mdw "restaurant-booking/internal/transport/http/middleware"
	resp "restaurant-booking/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// AErr is a transport-level failure with an explicit envelope code.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action describes one endpoint: I is bound from the request, O is
// returned as data.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool          // require an authenticated actor
	Roles   []domain.Role // optional role allow-list, implies Auth
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth || len(a.Roles) > 0 {
			actor := mdw.ActorFrom(c)
			if !actor.Authenticated() {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, actor.Role) {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindMessage(bindErr)))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

var kindCodes = []struct {
	kind error
	code int
}{
	{domain.ErrValidation, resp.CodeBadRequest},
	{domain.ErrUnauthorized, resp.CodeUnauthorized},
	{domain.ErrForbidden, resp.CodeForbidden},
	{domain.ErrNotFound, resp.CodeNotFound},
	{domain.ErrConflict, resp.CodeConflict},
	{domain.ErrInvalidTransition, resp.CodeUnprocessable},
}

// WriteError maps err to an envelope. Unclassified errors are attached to
// the context for the access log and answered with a generic 500.
func WriteError(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			_ = c.Error(err)
			c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Msg))
			return
		}
		c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
		return
	}
	for _, kc := range kindCodes {
		if errors.Is(err, kc.kind) {
			c.JSON(http.StatusOK, resp.ErrorWithData(kc.code, err.Error(), domain.DetailsOf(err)))
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, ""))
}

// UintParam reads a positive integer path parameter.
func UintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, BadRequest(fmt.Sprintf("invalid %s", name))
	}
	return uint(v), nil
}
