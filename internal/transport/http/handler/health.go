package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DatabaseDependency is the check name reported in the top-level "database" field.
const DatabaseDependency = "database"

type DependencyCheck func(ctx context.Context) error

type HealthHandler struct {
	appName   string
	env       string
	startedAt time.Time
	checks    map[string]DependencyCheck
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(appName, env string, startedAt time.Time, checks map[string]DependencyCheck) *HealthHandler {
	return &HealthHandler{
		appName:   appName,
		env:       env,
		startedAt: startedAt,
		checks:    checks,
	}
}

// Check always answers 200 so load balancers keep the instance while a
// dependency recovers; dependency state is reported in the body.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	dependencies := make(map[string]dependencyStatus, len(h.checks))
	for name, check := range h.checks {
		status := dependencyStatus{OK: true}
		if err := check(ctx); err != nil {
			status = dependencyStatus{OK: false, Message: err.Error()}
			if name == DatabaseDependency {
				database = "unreachable"
			}
		}
		dependencies[name] = status
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "OK",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"database":     database,
		"app":          h.appName,
		"env":          h.env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": dependencies,
	})
}

func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Chat Backend läuft!",
		"endpoints": gin.H{
			"health":   "/health",
			"messages": "/api/messages",
			"send":     "POST /api/messages",
		},
	})
}
