package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github/itish2003/finsight/models"
)

// Asker runs questions and multi-section extractions end to end. Satisfied
// by the pipeline orchestrator.
type Asker interface {
	Ask(ctx context.Context, question string) models.AskResult
	ExtractSections(ctx context.Context, sections []models.SectionRequest) []models.SectionResult
}

// DocumentStore is the slice of the vector store the HTTP layer needs.
type DocumentStore interface {
	Insert(ctx context.Context, chunks []models.Chunk) ([]string, error)
	All(ctx context.Context) ([]models.Chunk, error)
	Clear(ctx context.Context) error
	DeleteCollection(ctx context.Context) error
}

// Invalidator drops memoized retrievals after the collection changes.
type Invalidator interface {
	Invalidate()
}

// QueryController handles the HTTP requests for the FinSight API. It
// delegates all business logic to the orchestrator and the vector store.
type QueryController struct {
	asker Asker
	store DocumentStore
	cache Invalidator
}

// NewQueryController is called from main.go to inject the dependencies.
func NewQueryController(asker Asker, store DocumentStore, cache Invalidator) *QueryController {
	return &QueryController{
		asker: asker,
		store: store,
		cache: cache,
	}
}

// Query is the Gin handler for POST /api/v1/query. The pipeline never
// fails outright, so this endpoint always answers 200 with a usable body.
func (c *QueryController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result := c.asker.Ask(ctx.Request.Context(), req.Question)

	ctx.JSON(http.StatusOK, models.QueryResponse{
		Answer:     result.Answer,
		Artifact:   result.Artifact,
		Confidence: result.Confidence,
		Sources:    result.Sources,
	})
}

// Artifacts is the Gin handler for POST /api/v1/artifacts. Each requested
// section is extracted independently; slow sections come back as
// placeholders rather than holding up the response.
func (c *QueryController) Artifacts(ctx *gin.Context) {
	var req models.ArtifactsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(req.Sections) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "At least one section is required"})
		return
	}

	results := c.asker.ExtractSections(ctx.Request.Context(), req.Sections)
	ctx.JSON(http.StatusOK, models.ArtifactsResponse{Sections: results})
}

// InsertDocuments is the Gin handler for POST /api/v1/documents.
func (c *QueryController) InsertDocuments(ctx *gin.Context) {
	var req models.InsertDocumentsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	chunks := make([]models.Chunk, 0, len(req.Documents))
	for _, doc := range req.Documents {
		chunks = append(chunks, models.Chunk{
			ID:       doc.ID,
			Text:     doc.Text,
			Metadata: doc.Metadata,
		})
	}

	ids, err := c.store.Insert(ctx.Request.Context(), chunks)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert documents"})
		return
	}
	c.cache.Invalidate()

	ctx.JSON(http.StatusCreated, models.InsertDocumentsResponse{
		Message: "Documents inserted successfully",
		IDs:     ids,
		Skipped: len(chunks) - len(ids),
	})
}

// ListDocuments is the Gin handler for GET /api/v1/documents.
func (c *QueryController) ListDocuments(ctx *gin.Context) {
	chunks, err := c.store.All(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documents"})
		return
	}
	if chunks == nil {
		chunks = []models.Chunk{}
	}
	ctx.JSON(http.StatusOK, models.ListDocumentsResponse{
		Count:     len(chunks),
		Documents: chunks,
	})
}

// ClearCollection is the Gin handler for POST /api/v1/admin/clear. It
// empties the collection but keeps it usable for re-ingestion.
func (c *QueryController) ClearCollection(ctx *gin.Context) {
	if err := c.store.Clear(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear collection"})
		return
	}
	c.cache.Invalidate()
	ctx.JSON(http.StatusOK, models.AdminResponse{Message: "Collection cleared"})
}

// DeleteCollection is the Gin handler for DELETE /api/v1/admin/collection.
func (c *QueryController) DeleteCollection(ctx *gin.Context) {
	if err := c.store.DeleteCollection(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete collection"})
		return
	}
	c.cache.Invalidate()
	ctx.JSON(http.StatusOK, models.AdminResponse{Message: "Collection deleted"})
}
