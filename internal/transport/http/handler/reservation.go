package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/service"
	httpez "restaurant-booking/internal/transport/http/ez"
	mdw "restaurant-booking/internal/transport/http/middleware"
)

type ReservationHandler struct {
	svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

type createReservationReq struct {
	UserID  string `json:"user_id"`
	TableID uint   `json:"table_id" binding:"required"`
	Date    string `json:"date" binding:"required,isodate"`
	Time    string `json:"time" binding:"required,hhmm"`
	People  int    `json:"people" binding:"required,min=1"`
}

type checkConflictReq struct {
	TableID uint   `json:"table_id" binding:"required"`
	Date    string `json:"date" binding:"required,isodate"`
	Time    string `json:"time" binding:"required,hhmm"`
}

type editReservationReq struct {
	TableID *uint   `json:"table_id" binding:"omitempty,min=1"`
	Date    *string `json:"date" binding:"omitempty,isodate"`
	Time    *string `json:"time" binding:"omitempty,hhmm"`
	People  *int    `json:"people" binding:"omitempty,min=1"`
	Status  *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

type updateReservationReq struct {
	TableID uint   `json:"table_id" binding:"required"`
	Date    string `json:"date" binding:"required,isodate"`
	Time    string `json:"time" binding:"required,hhmm"`
	People  int    `json:"people" binding:"required,min=1"`
	Status  string `json:"status" binding:"required,oneof=pending confirmed cancelled"`
}

type slotsOut struct {
	Slots          []string `json:"slots"`
	ClosedWeekdays []string `json:"closed_weekdays"`
	MinParty       int      `json:"min_party"`
	MaxParty       int      `json:"max_party"`
}

func (h *ReservationHandler) Priority() int { return 20 }

func (h *ReservationHandler) MountAPI(public, authed *gin.RouterGroup) {
	pub := httpez.New(public)
	ez := httpez.New(authed)

	httpez.RegisterAction(pub, httpez.Action[struct{}, slotsOut]{
		Method: http.MethodGet,
		Path:   "/slots",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (slotsOut, error) {
			rules := h.svc.Rules()
			out := slotsOut{Slots: rules.Slots, ClosedWeekdays: []string{}, MinParty: rules.MinParty, MaxParty: rules.MaxParty}
			for _, d := range rules.ClosedWeekdays {
				out.ClosedWeekdays = append(out.ClosedWeekdays, strings.ToLower(d.String()))
			}
			return out, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Reservation]{
		Method: http.MethodGet,
		Path:   "/reservations",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Reservation, error) {
			list, err := h.svc.List(c.Request.Context(), mdw.ActorFrom(c))
			if list == nil && err == nil {
				list = []domain.Reservation{}
			}
			return list, err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[createReservationReq, *domain.Reservation]{
		Method: http.MethodPost,
		Path:   "/reservations",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *createReservationReq) (*domain.Reservation, error) {
			return h.svc.Create(c.Request.Context(), mdw.ActorFrom(c), service.CreateReservationInput{
				UserID:  in.UserID,
				TableID: in.TableID,
				Date:    in.Date,
				Time:    in.Time,
				People:  in.People,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[checkConflictReq, gin.H]{
		Method: http.MethodPost,
		Path:   "/reservations/check",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *checkConflictReq) (gin.H, error) {
			taken, err := h.svc.CheckConflict(c.Request.Context(), in.TableID, in.Date, in.Time)
			if err != nil {
				return nil, err
			}
			return gin.H{"exists": taken}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Reservation]{
		Method: http.MethodGet,
		Path:   "/reservations/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Reservation, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Get(c.Request.Context(), mdw.ActorFrom(c), id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Reservation]{
		Method: http.MethodPut,
		Path:   "/reservations/:id/confirm",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Reservation, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Confirm(c.Request.Context(), mdw.ActorFrom(c), id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Reservation]{
		Method: http.MethodPut,
		Path:   "/reservations/:id/cancel",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Reservation, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Cancel(c.Request.Context(), mdw.ActorFrom(c), id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[editReservationReq, *domain.Reservation]{
		Method: http.MethodPut,
		Path:   "/reservations/:id/edit",
		Binder: httpez.BindJSON,
		Roles:  []domain.Role{domain.RoleWaiter, domain.RoleAdmin},
		Handler: func(c *gin.Context, in *editReservationReq) (*domain.Reservation, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			ch := service.ReservationChanges{TableID: in.TableID, Date: in.Date, Time: in.Time, People: in.People}
			if in.Status != nil {
				st := domain.ReservationStatus(*in.Status)
				ch.Status = &st
			}
			return h.svc.Edit(c.Request.Context(), mdw.ActorFrom(c), id, ch)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[updateReservationReq, *domain.Reservation]{
		Method: http.MethodPut,
		Path:   "/reservations/:id",
		Binder: httpez.BindJSON,
		Roles:  []domain.Role{domain.RoleWaiter, domain.RoleAdmin},
		Handler: func(c *gin.Context, in *updateReservationReq) (*domain.Reservation, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), mdw.ActorFrom(c), id,
				in.TableID, in.Date, in.Time, in.People, domain.ReservationStatus(in.Status))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/reservations/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.svc.Delete(c.Request.Context(), mdw.ActorFrom(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
