package document

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RentaDrive/RentaDrive/internal/common/server"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

// Handler 证件相关 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.POST("/documents", h.upload)
	v1.GET("/documents", h.list)
	v1.GET("/documents/:id", h.get)
	v1.PATCH("/documents/:id/verify", server.RequireRole(string(user.RoleAdmin)), h.verify)
}

type uploadRequest struct {
	UserID    string  `json:"user_id"` // 仅 admin 可代他人上传
	BookingID *string `json:"booking_id"`
	Type      string  `json:"type" binding:"required"`
	FileURL   string  `json:"file_url" binding:"required"`
}

func (h *Handler) upload(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := ai.Subject
	if req.UserID != "" && req.UserID != ai.Subject {
		if !ai.HasRole(string(user.RoleAdmin)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot upload for another user"})
			return
		}
		userID = req.UserID
	}

	doc, err := h.svc.Upload(c.Request.Context(), UploadInput{
		UserID:    userID,
		BookingID: req.BookingID,
		Type:      Type(req.Type),
		FileURL:   req.FileURL,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	if bookingID := c.Query("booking_id"); bookingID != "" {
		if !ai.HasRole(string(user.RoleAdmin)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		docs, err := h.svc.ListByBooking(c.Request.Context(), bookingID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
		return
	}

	userID := ai.Subject
	if v := c.Query("user_id"); v != "" && ai.HasRole(string(user.RoleAdmin)) {
		userID = v
	}
	docs, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) get(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	role := user.RoleCustomer
	if ai.HasRole(string(user.RoleAdmin)) {
		role = user.RoleAdmin
	}
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"), ai.Subject, role)
	switch {
	case errors.Is(err, ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, doc)
	}
}

func (h *Handler) verify(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	doc, err := h.svc.Verify(c.Request.Context(), c.Param("id"), ai.Subject, user.RoleAdmin)
	switch {
	case errors.Is(err, ErrAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"error": "document already verified"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, doc)
	}
}
