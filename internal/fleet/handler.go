package fleet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RentaDrive/RentaDrive/internal/common/server"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

// Handler 车队相关 HTTP 接口。
// /api/v1/fleet 是对外的车辆目录；/api/v1/cars 下是管理端操作。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.GET("/fleet", h.list)
	v1.GET("/fleet/:id", h.get)
	v1.GET("/features", h.listFeatures)

	admin := v1.Group("/cars", server.RequireRole(string(user.RoleAdmin)))
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.POST("/:id/maintenance", h.setMaintenance)
	admin.DELETE("/:id/maintenance", h.clearMaintenance)

	features := v1.Group("/features", server.RequireRole(string(user.RoleAdmin)))
	features.POST("", h.createFeature)
}

func (h *Handler) list(c *gin.Context) {
	status := Status(c.Query("status"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}

	cars, total, err := h.svc.List(c.Request.Context(), status, (page-1)*size, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	car, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, car)
}

type carRequest struct {
	Name         string   `json:"name"`
	LicensePlate string   `json:"license_plate"`
	Type         string   `json:"type"`
	Transmission string   `json:"transmission"`
	Seats        int      `json:"seats"`
	PricePerDay  int64    `json:"price_per_day"`
	ImageURL     string   `json:"image_url"`
	FeatureIDs   []string `json:"feature_ids"`
}

func (h *Handler) create(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	car, err := h.svc.CreateCar(c.Request.Context(), CreateCarInput{
		Name:         req.Name,
		LicensePlate: req.LicensePlate,
		Type:         req.Type,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		PricePerDay:  req.PricePerDay,
		ImageURL:     req.ImageURL,
		FeatureIDs:   req.FeatureIDs,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, car)
}

func (h *Handler) update(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	car, err := h.svc.UpdateCar(c.Request.Context(), c.Param("id"), UpdateCarInput{
		Name:         req.Name,
		Type:         req.Type,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		PricePerDay:  req.PricePerDay,
		ImageURL:     req.ImageURL,
		FeatureIDs:   req.FeatureIDs,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *Handler) setMaintenance(c *gin.Context) {
	car, err := h.svc.SetMaintenance(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
	case errors.Is(err, ErrCarBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, car)
	}
}

func (h *Handler) clearMaintenance(c *gin.Context) {
	car, err := h.svc.ClearMaintenance(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
	case errors.Is(err, ErrNotInMaintenance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, car)
	}
}

func (h *Handler) listFeatures(c *gin.Context) {
	fs, err := h.svc.ListFeatures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": fs})
}

type featureRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

func (h *Handler) createFeature(c *gin.Context) {
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.svc.CreateFeature(c.Request.Context(), req.Name, req.Icon)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, f)
}
