package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// BuildInfo is served at /-/build. Version, Commit and BuildTime come from
// ldflags; APIBaseURL shows which Zapallo API this instance manages.
type BuildInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	APIBaseURL string `json:"apiBaseUrl"`
	Commit     string `json:"commit"`
	BuildTime  string `json:"buildTime"`
	GoVersion  string `json:"goVersion"`
}

// NewBuildInfo fills in BuildInfo, taking the Go version from the runtime.
func NewBuildInfo(name, version, commit, buildTime, apiBaseURL string) BuildInfo {
	return BuildInfo{
		Name:       name,
		Version:    version,
		APIBaseURL: apiBaseURL,
		Commit:     commit,
		BuildTime:  buildTime,
		GoVersion:  runtime.Version(),
	}
}

// HealthHandler serves the operational endpoints under /-/.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

// NewHealthHandler creates the operational endpoints over a readiness registry.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, buildInfo: buildInfo}
}

type livenessResponse struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status string                        `json:"status"`
	API    string                        `json:"api,omitempty"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers 200 while the process is up. It never calls the API.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

// Readiness probes each Zapallo API collection through the registered
// checkers and answers 503 when any of them fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, readinessResponse{
		Status: string(result.Status),
		API:    h.buildInfo.APIBaseURL,
		Checks: result.Checks,
	})
}

// BuildInfoHandler serves /-/build.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler exposes the default prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterHealthRoutes mounts live, ready, build and metrics on rg.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(MetricsHandler()))
}

// RegisterHealthRoutesOnEngine mounts the operational endpoints under /-/.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
