package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/interviewpro/backend/config"
	"github.com/interviewpro/backend/internal/api/handlers"
	"github.com/interviewpro/backend/internal/api/middleware"
	"github.com/interviewpro/backend/internal/api/routes"
	"github.com/interviewpro/backend/internal/cache"
	"github.com/interviewpro/backend/internal/interview"
	"github.com/interviewpro/backend/internal/logger"
	"github.com/interviewpro/backend/internal/providers/extract"
	"github.com/interviewpro/backend/internal/providers/llm"
	"github.com/interviewpro/backend/internal/providers/stt"
	"github.com/interviewpro/backend/internal/providers/tts"
	mongorepo "github.com/interviewpro/backend/internal/repositories/mongo"
	"github.com/interviewpro/backend/internal/services"
	"github.com/interviewpro/backend/internal/storage"
	"github.com/interviewpro/backend/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index setup failed")
	}
	log.Info("MongoDB connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init failed")
	}
	log.Info("Redis connected")

	db := config.MongoDatabase()
	rdb := config.RedisClient

	// providers
	projectID := os.Getenv("GCP_PROJECT_ID")
	location := envOr("GCP_LOCATION", "us-central1")

	llmProvider, err := llm.NewVertexGemini(ctx, projectID, location, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.WithError(err).Fatal("Vertex AI init failed")
	}
	defer llmProvider.Close()

	extractor, err := extract.NewDocAI(ctx, projectID, envOr("DOCAI_LOCATION", "us"), os.Getenv("DOCAI_PROCESSOR_ID"))
	if err != nil {
		log.WithError(err).Fatal("Document AI init failed")
	}
	defer extractor.Close()

	var store storage.Store
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSStore(ctx, bucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init failed")
		}
		defer gcs.Close()
		store = gcs
	} else {
		local, err := storage.NewLocalStore(envOr("UPLOAD_DIR", "uploads"))
		if err != nil {
			log.WithError(err).Fatal("local storage init failed")
		}
		store = local
	}

	// speech providers are optional: without them the live round relies on
	// the browser's own recognition and voices
	var sttProvider stt.Provider
	if os.Getenv("SERVER_STT") == "true" {
		gs, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.WithError(err).Fatal("Speech-to-Text init failed")
		}
		gs.PhraseHints = interview.DefaultLexicon().Canonical()
		defer gs.Close()
		sttProvider = gs
	}

	var ttsProvider tts.Provider
	if os.Getenv("SERVER_TTS") == "true" {
		gt, err := tts.NewGoogleTTS(ctx)
		if err != nil {
			log.WithError(err).Fatal("Text-to-Speech init failed")
		}
		defer gt.Close()
		ttsProvider = gt
	}

	// repositories and services
	sessionRepo := mongorepo.NewSessionRepo(db)
	spaceRepo := mongorepo.NewSpaceRepo(db)
	qaRepo := mongorepo.NewQuestionAnswerRepo(db)
	redisCache := cache.NewRedisCache(rdb)
	summaryQueue := workers.NewSummaryQueue(rdb)

	sessionSvc := services.NewSessionService(sessionRepo)
	spaceSvc := services.NewSpaceService(spaceRepo, sessionRepo, llmProvider, extractor, store, redisCache)
	interviewSvc := services.NewInterviewService(spaceRepo, qaRepo, llmProvider, summaryQueue, redisCache)

	// background summary workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	pool := &workers.SummaryWorkerPool{
		Redis:      rdb,
		Interviews: interviewSvc,
		NumWorkers: envInt("SUMMARY_WORKERS", 3),
		Logger:     log,
	}
	if err := pool.Start(workerCtx); err != nil {
		log.WithError(err).Fatal("summary worker start failed")
	}

	machineCfg := interview.Config{
		RestartInterval: time.Duration(envInt("RECOGNITION_RESTART_SECONDS", 8)) * time.Second,
	}

	// http server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RateLimit(rdb, envInt("RATE_LIMIT", 100), 15*time.Minute))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     splitCSV(envOr("CORS_ORIGINS", "http://localhost:5173")),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Session:   handlers.NewSessionHandler(sessionSvc),
		Space:     handlers.NewSpaceHandler(spaceSvc),
		Interview: handlers.NewInterviewHandler(interviewSvc),
		Live:      handlers.NewLiveHandler(interviewSvc, sttProvider, ttsProvider, rdb, log, machineCfg),
	})

	port := envOr("PORT", "8080")
	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
