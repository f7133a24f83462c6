package handlers

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"bookmybus/internal/http/middleware"
	"bookmybus/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Bus booking API is running"})
}

func (h Handler) DBCheck(c *gin.Context) {
	if h.Ping == nil {
		RespondError(c, http.StatusServiceUnavailable, "Database not connected")
		return
	}
	if err := h.Ping(c.Request.Context()); err != nil {
		utils.LogError(middleware.GetRequestID(c), "system", "db_check", err)
		RespondError(c, http.StatusServiceUnavailable, "Database unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database connection OK"})
}

// Routes lists the mounted API routes sorted by path.
func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "Router not ready")
		return
	}

	type routeInfo struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}
	out := []routeInfo{}
	for _, rt := range r.Routes() {
		if rt.Method == http.MethodOptions || !strings.HasPrefix(rt.Path, "/api") {
			continue
		}
		out = append(out, routeInfo{Method: rt.Method, Path: rt.Path})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
