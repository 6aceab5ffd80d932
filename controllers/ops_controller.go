package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"ecopredict/middleware"
	"ecopredict/utils"
	"github.com/gorilla/mux"
)

// HealthCheck проверяет доступность зависимости
type HealthCheck func(ctx context.Context) error

// OpsController отдает состояние сервиса и метрики
type OpsController struct {
	checks  map[string]HealthCheck
	metrics *utils.Metrics
}

// NewOpsController создает новый экземпляр OpsController
func NewOpsController(checks map[string]HealthCheck) *OpsController {
	return &OpsController{
		checks:  checks,
		metrics: utils.GetMetrics(),
	}
}

// Health выполняет проверки зависимостей
func (c *OpsController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
	})
}

// Metrics отдает снимок метрик
func (c *OpsController) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.metrics.GetMetricsSnapshot())
}

// NewOpsRouter собирает маршрутизатор служебного сервера
func NewOpsRouter(controller *OpsController) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.HandleFunc("/healthz", controller.Health).Methods(http.MethodGet)
	r.HandleFunc("/metrics", controller.Metrics).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.LogError("encode response: %v", err)
	}
}
