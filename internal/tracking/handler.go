package tracking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RentaDrive/RentaDrive/internal/common/config"
	"github.com/RentaDrive/RentaDrive/internal/common/db"
	"github.com/RentaDrive/RentaDrive/internal/common/middleware"
	"github.com/RentaDrive/RentaDrive/internal/common/server"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

// Handler 位置上报/轨迹查询 HTTP 接口。
// 上报来自车载终端，频率高，入口处挂令牌桶限流。
type Handler struct {
	svc *Service
	cfg config.TrackingConfig
}

func NewHandler(svc *Service, cfg config.TrackingConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// Register 挂载路由。
func (h *Handler) Register(r *gin.Engine) {
	rate := h.cfg.IngestRatePerSec
	if rate <= 0 {
		rate = 50
	}
	burst := h.cfg.IngestBurst
	if burst <= 0 {
		burst = 200
	}
	limiter := middleware.NewTokenBucket(burst, rate)

	v1 := r.Group("/api/v1")
	admin := v1.Group("/cars", server.RequireRole(string(user.RoleAdmin)))
	admin.POST("/:id/position", middleware.RateLimitHandler(limiter), h.record)
	admin.GET("/:id/history", h.history)
}

type recordRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Speed     float64 `json:"speed"`
	Timestamp int64   `json:"timestamp"` // Unix 秒；0 表示取服务器时间
}

func (h *Handler) record(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ts time.Time
	if req.Timestamp > 0 {
		ts = time.Unix(req.Timestamp, 0)
	}

	sample, err := h.svc.Record(c.Request.Context(), RecordInput{
		CarID:     c.Param("id"),
		Lat:       req.Lat,
		Lng:       req.Lng,
		Speed:     req.Speed,
		Timestamp: ts,
	})
	switch {
	case errors.Is(err, ErrInvalidCoordinate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
	case db.IsStorage(err):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, sample)
	}
}

func (h *Handler) history(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if max := h.cfg.HistoryLimit; max > 0 && limit > max {
		limit = max
	}

	var since time.Time
	if v := c.Query("since"); v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a unix timestamp"})
			return
		}
		since = time.Unix(sec, 0)
	}

	samples, err := h.svc.History(c.Request.Context(), c.Param("id"), since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}
