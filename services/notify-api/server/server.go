package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postpress/cnotify/docs"
	"github.com/postpress/cnotify/pkg/kv"
	"github.com/postpress/cnotify/pkg/metrics"
)

func NewHTTPServer(addr string, h *Handlers, store *kv.Store) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery(), Notices(store), Observability())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/posts/:id/notification", h.SubmitNotification)
	r.GET("/posts/:id/notification/draft", h.GetDraft)
	r.GET("/posts/:id/notifications", h.ListSent)

	r.GET("/notices", h.DrainNotices)
	r.GET("/roles", h.ListRoles)

	r.GET("/users/:id/notifications", h.GetPreference)
	r.PUT("/users/:id/notifications", h.SetPreference)

	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.SaveSettings)
	r.DELETE("/settings", h.DeleteSettings)

	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", docs.SwaggerHTML)
	})
	r.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", docs.OpenAPI)
	})

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}
