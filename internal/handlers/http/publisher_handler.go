package http

import (
	"net/http"
	"time"

	"mediapub/internal/core/domain"
	"mediapub/internal/publisher"

	"github.com/gin-gonic/gin"
)

// PublisherHandler serves the read-only operational API. It only snapshots
// publisher state; nothing here touches the dispatch path.
type PublisherHandler struct {
	publisher *publisher.Publisher
}

func NewPublisherHandler(pub *publisher.Publisher) *PublisherHandler {
	return &PublisherHandler{publisher: pub}
}

func (h *PublisherHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/applications", h.ListApplications)
		api.GET("/applications/:app/streams", h.ListStreams)
	}
}

func (h *PublisherHandler) Health(c *gin.Context) {
	for _, app := range h.publisher.Applications() {
		if !app.Running() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"app":    app.Name(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (h *PublisherHandler) ListApplications(c *gin.Context) {
	apps := h.publisher.Applications()
	stats := make([]publisher.QueueStats, 0, len(apps))
	for _, app := range apps {
		stats = append(stats, app.Stats())
	}
	c.JSON(http.StatusOK, gin.H{"applications": stats})
}

type streamView struct {
	ID        domain.StreamID   `json:"id"`
	Name      domain.StreamName `json:"name"`
	Tracks    int               `json:"tracks"`
	CreatedAt time.Time         `json:"created_at"`
}

func (h *PublisherHandler) ListStreams(c *gin.Context) {
	app, ok := h.publisher.GetApplication(c.Param("app"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	streams := app.Streams()
	views := make([]streamView, 0, len(streams))
	for _, s := range streams {
		info := s.Info()
		views = append(views, streamView{
			ID:        info.ID,
			Name:      info.Name,
			Tracks:    len(info.Tracks),
			CreatedAt: info.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"streams": views})
}
