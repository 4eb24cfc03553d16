package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/api"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/config"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/ocr"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/pipeline"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/platform/gemini"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/platform/localllm"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/recipe"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/vision"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// The classifier is optional: a missing model degrades to OCR-only
	// analysis instead of refusing to start.
	classifier, err := vision.LoadClassifier(cfg.ModelPath, cfg.ClassesPath)
	if err != nil {
		log.Warnf("failed to initialize classifier, continuing without it: %v", err)
		classifier = nil
	}
	if classifier != nil {
		defer classifier.Close()
	}

	generator := buildGenerator(ctx, cfg)

	dbStore, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Errorf("error creating postgres store: %w", err))
	}
	defer dbStore.Close()
	log.Info("connected to database")

	orchestrator := pipeline.New(ocr.NewExtractor(), classifierOrNil(classifier), generator, dbStore)
	handler := api.NewHandler(orchestrator, dbStore, cfg.UploadDir)

	r := gin.New()
	r.Use(gin.Logger())
	// Stage-local failures are absorbed inside the pipeline; anything that
	// still panics is a genuinely unexpected fault and turns into one generic
	// internal error.
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorf("unexpected fault: %v", recovered)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/analyze", handler.Analyze)
	r.GET("/recipes", handler.ListRecipes)
	r.Static("/uploads", cfg.UploadDir)

	log.Infof("listening on %s", cfg.ListenAddr)
	r.Run(cfg.ListenAddr)
}

// buildGenerator selects the generative backend. A missing credential is not
// fatal: the pipeline runs without a generator and recipes stay absent.
func buildGenerator(ctx context.Context, cfg *config.Config) pipeline.Generator {
	switch cfg.Generator {
	case "local":
		log.Info("using local LLM recipe generator")
		return localllm.NewClient(cfg.LocalLLMURL)
	default:
		if cfg.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set, recipe generation disabled")
			return nil
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Warnf("error creating gemini client, recipe generation disabled: %v", err)
			return nil
		}
		return client
	}
}

// classifierOrNil avoids handing the pipeline a non-nil interface wrapping a
// nil *vision.Classifier.
func classifierOrNil(c *vision.Classifier) pipeline.ImageClassifier {
	if c == nil {
		return nil
	}
	return c
}
