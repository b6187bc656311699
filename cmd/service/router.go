package service

import (
	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/app/response"
	"github.com/rowdybard/banterbox/cmd/service/handler"
	"github.com/rowdybard/banterbox/cmd/service/middleware"
	"github.com/rowdybard/banterbox/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.Observe(s.Core))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	apiV1.Use(middleware.Authorization(s.Core))
	{
		memory := apiV1.Group("/memory")
		{
			memory.POST("/events", s.RecordEvent)
			memory.PUT("/events/:event_id/response", s.AttachResponse)
			memory.GET("/context", s.GetContext)
			memory.POST("/classify", s.ClassifyMessage)
			memory.POST("/responses", s.RecordResponse)
			memory.POST("/sweep", s.Sweep)
			memory.GET("/stats", s.Stats)
		}
	}
}
