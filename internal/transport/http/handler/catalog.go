package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/service"
	httpez "restaurant-booking/internal/transport/http/ez"
	mdw "restaurant-booking/internal/transport/http/middleware"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type categoryReq struct {
	Name  string `json:"name" binding:"required,max=255"`
	Photo string `json:"photo" binding:"max=255"`
	Order int    `json:"order"`
}

type productReq struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Image       string  `json:"image" binding:"required,max=255"`
}

func (r productReq) input() service.ProductInput {
	return service.ProductInput{Name: r.Name, Description: r.Description, Price: r.Price, CategoryID: r.CategoryID, Image: r.Image}
}

type productsQuery struct {
	CategoryID uint `form:"category_id"`
}

func (h *CatalogHandler) MountAPI(public, _ *gin.RouterGroup) {
	ez := httpez.New(public)

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Category, error) {
			out, err := h.svc.ListCategories(c.Request.Context())
			if out == nil && err == nil {
				out = []domain.Category{}
			}
			return out, err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[productsQuery, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *productsQuery) ([]domain.Product, error) {
			out, err := h.svc.ListProducts(c.Request.Context(), in.CategoryID)
			if out == nil && err == nil {
				out = []domain.Product{}
			}
			return out, err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.GetProduct(c.Request.Context(), id)
		},
	})
}

func (h *CatalogHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	httpez.RegisterAction(ez, httpez.Action[categoryReq, *domain.Category]{
		Method: http.MethodPost,
		Path:   "/categories",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *categoryReq) (*domain.Category, error) {
			return h.svc.CreateCategory(c.Request.Context(), mdw.ActorFrom(c),
				service.CategoryInput{Name: in.Name, Photo: in.Photo, Order: in.Order})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[categoryReq, *domain.Category]{
		Method: http.MethodPut,
		Path:   "/categories/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *categoryReq) (*domain.Category, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateCategory(c.Request.Context(), mdw.ActorFrom(c), id,
				service.CategoryInput{Name: in.Name, Photo: in.Photo, Order: in.Order})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/categories/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.svc.DeleteCategory(c.Request.Context(), mdw.ActorFrom(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[productReq, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *productReq) (*domain.Product, error) {
			return h.svc.CreateProduct(c.Request.Context(), mdw.ActorFrom(c), in.input())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[productReq, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *productReq) (*domain.Product, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateProduct(c.Request.Context(), mdw.ActorFrom(c), id, in.input())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := httpez.UintParam(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.svc.DeleteProduct(c.Request.Context(), mdw.ActorFrom(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
