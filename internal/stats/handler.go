package stats

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RentaDrive/RentaDrive/internal/common/server"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

// Handler 管理端统计接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1/admin", server.RequireRole(string(user.RoleAdmin)))
	v1.GET("/stats", h.overview)
}

func (h *Handler) overview(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ov)
}
