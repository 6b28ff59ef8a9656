package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github/itish2003/finsight/config"
	"github/itish2003/finsight/controller"
	"github/itish2003/finsight/embedder"
	"github/itish2003/finsight/ingest"
	"github/itish2003/finsight/llm"
	"github/itish2003/finsight/pipeline"
	"github/itish2003/finsight/retriever"
	"github/itish2003/finsight/vectorstore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	configPath := os.Getenv("FINSIGHT_CONFIG")
	if configPath == "" {
		configPath = "./config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Chroma client using the v2 API
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.Chroma.URL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	emb, err := embedder.New(cfg.Embedding, httpClient, geminiClient)
	if err != nil {
		log.Fatalf("FATAL: Failed to build embedding provider: %v", err)
	}
	log.Printf("Using %s embeddings via %s.", emb.Model(), cfg.Embedding.Provider)

	store, err := vectorstore.New(context.Background(), chromaClient, cfg.Chroma.Collection, emb, cfg.Retrieval.SmallCollectionThreshold)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	ret := retriever.New(store, cfg.Retrieval, cfg.CacheTTL())

	primary := llm.NewGeminiGenerator(geminiClient, cfg.Generation.Model)
	var secondary llm.Generator
	if cfg.Generation.FallbackModel != "" {
		secondary = llm.NewOpenAIGenerator(os.Getenv("OPENAI_API_KEY"), cfg.Generation.FallbackURL, cfg.Generation.FallbackModel)
	}

	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Retriever:         ret,
		Primary:           primary,
		Secondary:         secondary,
		GenerationTimeout: cfg.GenerationTimeout(),
		SectionWorkers:    cfg.Sections.Workers,
		SectionTimeout:    cfg.SectionTimeout(),
	})

	// Background ingestion: initial sync, then live re-indexing.
	if err := os.MkdirAll(cfg.Ingest.WatchDir, 0755); err != nil {
		log.Printf("Warning: Could not create watch directory %s: %v", cfg.Ingest.WatchDir, err)
	}
	indexer := ingest.New(store, ret, cfg.Ingest)
	go func() {
		ctx := context.Background()
		indexer.ScanDirectory(ctx, cfg.Ingest.WatchDir)
		indexer.WatchDirectory(ctx, cfg.Ingest.WatchDir)
	}()

	queryController := controller.NewQueryController(orchestrator, store, ret)

	// Setup Gin router
	router := gin.Default()

	// CORS middleware so a local frontend can talk to the API
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "FinSight API",
			"version":    "1.0.0",
			"collection": store.Name(),
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", queryController.Query)           // Ask a question
		apiV1.POST("/artifacts", queryController.Artifacts)   // Multi-section extraction
		apiV1.POST("/documents", queryController.InsertDocuments)
		apiV1.GET("/documents", queryController.ListDocuments)
		apiV1.POST("/admin/clear", queryController.ClearCollection)
		apiV1.DELETE("/admin/collection", queryController.DeleteCollection)
	}

	log.Printf("FinSight backend server starting on http://localhost:%s", cfg.Server.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Server.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST http://localhost:%s/api/v1/query", cfg.Server.Port)
	log.Printf("  POST http://localhost:%s/api/v1/artifacts", cfg.Server.Port)
	log.Printf("  POST http://localhost:%s/api/v1/documents", cfg.Server.Port)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
