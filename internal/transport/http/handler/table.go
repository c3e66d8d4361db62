package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/service"
	httpez "restaurant-booking/internal/transport/http/ez"
	mdw "restaurant-booking/internal/transport/http/middleware"
)

// TableHandler serves table reads on the API and table writes on the admin
// engine.
type TableHandler struct {
	tables       *service.TableService
	reservations *service.ReservationService
}

func NewTableHandler(tables *service.TableService, reservations *service.ReservationService) *TableHandler {
	return &TableHandler{tables: tables, reservations: reservations}
}

type tableReq struct {
	Location string `json:"location" binding:"required,max=255"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Status   string `json:"status" binding:"omitempty,oneof=available unavailable"`
}

func (r tableReq) input() service.TableInput {
	return service.TableInput{Location: r.Location, Capacity: r.Capacity, Status: domain.TableStatus(r.Status)}
}

type availabilityReq struct {
	Date string `form:"date" binding:"required,isodate"`
}

func (h *TableHandler) Priority() int { return 10 }

func (h *TableHandler) MountAPI(_, authed *gin.RouterGroup) {
	ez := httpez.New(authed)

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Table]{
		Method: http.MethodGet,
		Path:   "/tables",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Table, error) {
			return h.tables.List(c.Request.Context(), mdw.ActorFrom(c))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Table]{
		Method: http.MethodGet,
		Path:   "/tables/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Table, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.tables.Get(c.Request.Context(), mdw.ActorFrom(c), id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[availabilityReq, *service.Availability]{
		Method: http.MethodGet,
		Path:   "/tables/:id/availability",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *availabilityReq) (*service.Availability, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.reservations.Availability(c.Request.Context(), id, in.Date)
		},
	})
}

func (h *TableHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	httpez.RegisterAction(ez, httpez.Action[tableReq, *domain.Table]{
		Method: http.MethodPost,
		Path:   "/tables",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *tableReq) (*domain.Table, error) {
			return h.tables.Create(c.Request.Context(), mdw.ActorFrom(c), in.input())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[tableReq, *domain.Table]{
		Method: http.MethodPut,
		Path:   "/tables/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *tableReq) (*domain.Table, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.tables.Update(c.Request.Context(), mdw.ActorFrom(c), id, in.input())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/tables/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.tables.Delete(c.Request.Context(), mdw.ActorFrom(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
