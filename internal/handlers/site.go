package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Route is one entry of the API sitemap.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type SiteHandler struct {
	engine *gin.Engine
	db     *gorm.DB
}

func NewSiteHandler(engine *gin.Engine, db *gorm.DB) *SiteHandler {
	return &SiteHandler{engine: engine, db: db}
}

// Sitemap - GET / 列出所有已注册的路由
func (h *SiteHandler) Sitemap(c *gin.Context) {
	infos := h.engine.Routes()
	routes := make([]Route, 0, len(infos))
	for _, ri := range infos {
		routes = append(routes, Route{Method: ri.Method, Path: ri.Path})
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	c.JSON(http.StatusOK, routes)
}

// Healthz - GET /healthz
func (h *SiteHandler) Healthz(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
