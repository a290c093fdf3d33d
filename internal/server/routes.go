package server

import (
	"github.com/querylens/querylens/internal/server/handlers"
)

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(dashboard *handlers.Dashboard) {
	s.router.Get("/", dashboard.Index)
	s.router.Post("/run", dashboard.Run)
	s.router.Post("/api/run", dashboard.RunAPI)

	s.router.Get("/runs", dashboard.ListRuns)
	s.router.Get("/runs/{id}", dashboard.GetRun)
	s.router.Get("/runs/{id}/csv", dashboard.DownloadCSV)

	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/version", handlers.VersionHandler)
}
