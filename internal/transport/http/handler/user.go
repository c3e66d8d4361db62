package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/service"
	httpez "restaurant-booking/internal/transport/http/ez"
	mdw "restaurant-booking/internal/transport/http/middleware"
)

// UserHandler covers sign-up, sign-in, the caller's profile and user
// administration.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

type registerReq struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type profileReq struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
}

type listUsersReq struct {
	Offset int `form:"offset,default=0" binding:"gte=0"`
	Limit  int `form:"limit,default=20"`
}

type adminUserReq struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=customer waiter admin"`
}

func (h *UserHandler) Priority() int { return 0 }

func (h *UserHandler) MountAPI(public, authed *gin.RouterGroup) {
	pub := httpez.New(public)
	ez := httpez.New(authed)

	httpez.RegisterAction(pub, httpez.Action[registerReq, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *registerReq) (*service.Session, error) {
			return h.svc.Register(c.Request.Context(), in.Name, in.Email, in.Password)
		},
	})

	httpez.RegisterAction(pub, httpez.Action[loginReq, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginReq) (*service.Session, error) {
			return h.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			jti, ttl := mdw.TokenFrom(c)
			if err := h.svc.Logout(c.Request.Context(), jti, ttl); err != nil {
				return nil, err
			}
			return gin.H{"logged_out": true}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Me(c.Request.Context(), mdw.ActorFrom(c))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[profileReq, *domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileReq) (*domain.User, error) {
			return h.svc.UpdateMe(c.Request.Context(), mdw.ActorFrom(c),
				service.ProfileInput{Name: in.Name, Email: in.Email, Password: in.Password})
		},
	})
}

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	httpez.RegisterAction(ez, httpez.Action[listUsersReq, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listUsersReq) (*service.UserPage, error) {
			return h.svc.List(c.Request.Context(), mdw.ActorFrom(c), in.Offset, in.Limit)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[adminUserReq, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *adminUserReq) (*domain.User, error) {
			return h.svc.Update(c.Request.Context(), mdw.ActorFrom(c), c.Param("id"),
				service.UserUpdateInput{Name: in.Name, Email: in.Email, Role: domain.Role(in.Role)})
		},
	})
}
