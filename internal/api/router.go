package api

import (
	"github.com/gin-gonic/gin"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/api/handler"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/emotion"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/storage"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/transcribe"
)

type Router struct {
	engine *gin.Engine
}

// Deps carries everything the HTTP surface needs. The transcriber and the
// emotion client may be nil; their endpoints then report unavailable.
type Deps struct {
	DB            *storage.PostgresDB
	Queue         *queue.RedisQueue
	Rubrics       *rubric.Store
	Transcriber   *transcribe.Client
	EmotionClient *emotion.Client
}

func NewRouter(deps Deps) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	callRepo := storage.NewCallRepo(deps.DB)
	reportRepo := storage.NewReportRepo(deps.DB)

	callHandler := handler.NewCallHandler(callRepo, deps.Rubrics, deps.Queue)
	reportHandler := handler.NewReportHandler(reportRepo)
	rubricHandler := handler.NewRubricHandler(deps.Rubrics)
	uploadHandler := handler.NewUploadHandler(callRepo, deps.Transcriber, deps.Queue)
	emotionHandler := handler.NewEmotionHandler(deps.EmotionClient)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		calls := v1.Group("/calls")
		{
			calls.POST("", callHandler.Ingest)
			calls.POST("/upload", uploadHandler.Upload)
			calls.GET("", callHandler.List)
			calls.GET("/:id", callHandler.GetByID)
			calls.POST("/:id/score", callHandler.Score)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/:call_id", reportHandler.GetByCallID)
		}
		v1.GET("/stats", reportHandler.Stats)

		rubrics := v1.Group("/rubrics")
		{
			rubrics.GET("/:project", rubricHandler.Versions)
			rubrics.GET("/:project/:version", rubricHandler.Get)
		}

		emotions := v1.Group("/emotion")
		{
			emotions.POST("/text", emotionHandler.DetectText)
			emotions.POST("/audio", emotionHandler.ClassifyAudio)
		}
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
