package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Migration Monitor API
// @version 1.0
// @description Read model of a repository migration dashboard
// @contact.name API Support
// @contact.url http://github.com/Kamar-Folarin
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	registerRoutes(r, h)
	return r
}

func registerRoutes(r *gin.Engine, h *Handler) {
	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		repos := v1.Group("/repos")
		{
			// @Summary List repositories
			// @Description Filtered and sorted repository projection of the latest snapshot
			// @Tags repos
			// @Produce json
			// @Param status query []string false "Status filter, repeatable or comma separated" collectionFormat(multi)
			// @Param name query string false "Case-insensitive name substring"
			// @Param sort query string false "Sort column" Enums(name, status, lastUpdate, lastChecked, startedAt, lastPushed, duration, size)
			// @Param dir query string false "Sort direction" Enums(asc, desc) default(asc)
			// @Success 200 {object} RepoListResponse
			// @Failure 400 {object} ErrorResponse
			// @Router /repos [get]
			repos.GET("", h.ListRepos)

			// @Summary Retry a repository
			// @Description Ask the server to retry the migration of one repository
			// @Tags repos
			// @Produce json
			// @Param name path string true "Repository name"
			// @Success 202 {object} map[string]string
			// @Failure 400 {object} ErrorResponse
			// @Failure 422 {object} ErrorResponse
			// @Failure 502 {object} ErrorResponse
			// @Router /repos/{name}/retry [post]
			repos.POST("/:name/retry", h.RetryRepo)
		}

		// @Summary Snapshot statistics
		// @Description Per-status counts, header and live channel status
		// @Tags stats
		// @Produce json
		// @Success 200 {object} StatsResponse
		// @Router /stats [get]
		v1.GET("/stats", h.GetStats)

		// @Summary Snapshot summary
		// @Description Aggregate size, duration and throughput of the latest snapshot
		// @Tags stats
		// @Produce json
		// @Success 200 {object} projection.SummaryDisplay
		// @Router /summary [get]
		v1.GET("/summary", h.GetSummary)

		// @Summary Recent snapshot statistics
		// @Description Journaled statistics, newest first
		// @Tags stats
		// @Produce json
		// @Param limit query int false "Number of entries to return" default(20)
		// @Success 200 {array} history.Entry
		// @Failure 404 {object} ErrorResponse
		// @Router /history [get]
		v1.GET("/history", h.GetHistory)

		workers := v1.Group("/workers")
		{
			// @Summary List workers
			// @Tags workers
			// @Produce json
			// @Success 200 {object} WorkerListResponse
			// @Router /workers [get]
			workers.GET("", h.ListWorkers)

			// @Summary Toggle a worker
			// @Description Stops a running worker or starts a stopped one
			// @Tags workers
			// @Produce json
			// @Param kind path string true "Worker" Enums(status, migration, progress)
			// @Success 200 {object} worker.Snapshot
			// @Failure 400 {object} ErrorResponse
			// @Failure 409 {object} ErrorResponse "An action is already in flight"
			// @Failure 502 {object} ErrorResponse
			// @Router /workers/{kind}/toggle [post]
			workers.POST("/:kind/toggle", h.ToggleWorker)
		}

		// @Summary List sync configurations
		// @Description Non-archived configurations first
		// @Tags settings
		// @Produce json
		// @Success 200 {array} models.SyncConfigSummary
		// @Failure 502 {object} ErrorResponse
		// @Router /syncs [get]
		v1.GET("/syncs", h.ListSyncs)

		// @Summary Compare settings
		// @Description Grouped settings comparison of one sync configuration
		// @Tags settings
		// @Produce json
		// @Param syncId path string true "Sync configuration ID"
		// @Success 200 {object} settings.Report
		// @Failure 422 {object} ErrorResponse
		// @Failure 502 {object} ErrorResponse
		// @Router /settings/{syncId} [get]
		v1.GET("/settings/:syncId", h.GetSettings)
	}
}
