package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// NoRoute answers unknown API paths with a JSON 404. When staticDir is set,
// other GET paths serve the client build and fall back to index.html so
// client-side routes survive a reload.
func NoRoute(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if staticDir == "" || strings.HasPrefix(p, "/api/") || p == "/api" ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Route not found",
				"path":    p,
				"method":  c.Request.Method,
			})
			return
		}

		name := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+p)))
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			c.File(name)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
