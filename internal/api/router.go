package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"population-pipeline/internal/api/handler"
	"population-pipeline/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.RunHandler) {
	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/*", h.GetRun)
	r.GET("/api/v1/sums", h.GetSums)
	r.GET("/api/v1/documents", h.ListDocuments)

	r.Mount("/swagger/", httpSwagger.WrapHandler)
}
