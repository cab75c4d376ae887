package main

import (
	"context"
	"os"

	"reviewly/controllers"
	"reviewly/core"
	"reviewly/internal"
	"reviewly/internal/ingest"
	"reviewly/internal/retrieval"
	"reviewly/internal/topics"
	"reviewly/internal/webfallback"
	"reviewly/internal/worker"
	"reviewly/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	godotenv.Load()

	logger, err := internal.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// connect to the database
	db, err := core.InitDB()
	if err != nil {
		panic(err)
	}
	defer core.CloseDB(db)

	// auto migrate the database
	err = db.AutoMigrate(
		&models.Review{},
		&models.EmbeddingCacheEntry{},
		&models.Topic{},
		&models.ProcessedReview{},
	)
	if err != nil {
		panic(err)
	}

	// set up commands
	var command string
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "load_csv":
		if len(os.Args) < 3 {
			logger.Fatal("usage: reviewly load_csv <path>")
		}

		count, err := ingest.LoadFile(db, os.Args[2])
		if err != nil {
			logger.Fatalw("CSV load failed", "error", err)
		}

		logger.Infow("reviews loaded", "count", count)
		return
	case "backfill":
		s, err := initServices(db, logger)
		if err != nil {
			logger.Fatalw("service init failed", "error", err)
		}

		total, err := s.embedWorker.Run()
		if err != nil {
			logger.Fatalw("embedding backfill failed", "embedded", total, "error", err)
		}

		logger.Infow("embedding backfill done", "embedded", total)
		return
	case "scan_topics":
		if len(os.Args) < 4 {
			logger.Fatal("usage: reviewly scan_topics <wsid> <product_id>")
		}

		s, err := initServices(db, logger)
		if err != nil {
			logger.Fatalw("service init failed", "error", err)
		}

		scope := topics.Scope{WorkspaceID: os.Args[2], ProductID: os.Args[3]}
		if err := s.scanner.ScanScope(context.Background(), scope, 15000); err != nil {
			logger.Fatalw("topic scan failed", "error", err)
		}

		logger.Infow("topic scan done", "workspace_id", scope.WorkspaceID, "product_id", scope.ProductID)
		return
	default:
		runServer(db, logger)
	}
}

// services holds the collaborators built around external providers. They are
// constructed once at startup and injected into controllers.
type services struct {
	searcher    *retrieval.ReviewSearcher
	generator   *retrieval.Generator
	fetcher     *webfallback.Fetcher
	scanner     *topics.Scanner
	embedWorker *worker.Embedder
}

func initServices(db *gorm.DB, logger *zap.SugaredLogger) (*services, error) {
	embedder, err := retrieval.NewEmbedder()
	if err != nil {
		return nil, err
	}

	store, err := retrieval.NewPinecone(context.Background(), embedder)
	if err != nil {
		return nil, err
	}

	generator, err := retrieval.NewGenerator()
	if err != nil {
		return nil, err
	}

	extractor, err := topics.NewLLMExtractor()
	if err != nil {
		return nil, err
	}

	searcher := retrieval.NewReviewSearcher(store)
	cache := topics.NewEmbeddingCache(embedder, topics.GormEmbeddingStore{DB: db})
	merger := topics.NewMerger(cache, topics.GormCatalogueStore{DB: db})
	scanner := topics.NewScanner(topics.VectorSearcher{Searcher: searcher}, extractor, merger, topics.GormLedger{DB: db}, logger)

	return &services{
		searcher:    searcher,
		generator:   generator,
		fetcher:     webfallback.NewFetcher(logger),
		scanner:     scanner,
		embedWorker: worker.NewEmbedder(db, store, logger),
	}, nil
}

func runServer(db *gorm.DB, logger *zap.SugaredLogger) {
	// set up http server
	engine := gin.Default()
	err := engine.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "https://"+os.Getenv("UI_DOMAIN"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s, err := initServices(db, logger)
	if err != nil {
		panic(err)
	}

	healthController := controllers.HealthController{DB: db}
	askController := controllers.AskController{
		DB:        db,
		Searcher:  s.searcher,
		Generator: s.generator,
		Fetcher:   s.fetcher,
		Logger:    logger,
	}
	topicsController := controllers.TopicsController{
		DB:      db,
		Scanner: s.scanner,
		Logger:  logger,
	}
	reviewsController := controllers.ReviewsController{
		DB:       db,
		Embedder: s.embedWorker,
		Logger:   logger,
	}

	router := controllers.Router{
		HealthController:  &healthController,
		AskController:     &askController,
		TopicsController:  &topicsController,
		ReviewsController: &reviewsController,
	}

	router.RegisterRoutes(engine)

	err = engine.Run()
	if err != nil {
		return
	}
}
