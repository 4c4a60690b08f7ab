package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
)

type DeckHandler struct {
	BaseHandler
	flashcardService    services.FlashcardService
	importExportService services.ImportExportService
	maxUploadBytes      int64
}

func NewDeckHandler(
	flashcardService services.FlashcardService,
	importExportService services.ImportExportService,
	maxUploadBytes int64,
	logger utils.Logger,
) *DeckHandler {
	return &DeckHandler{
		BaseHandler:         NewBaseHandler(logger),
		flashcardService:    flashcardService,
		importExportService: importExportService,
		maxUploadBytes:      maxUploadBytes,
	}
}

// GenerateDeck handles POST /decks/generate
func (h *DeckHandler) GenerateDeck(c *gin.Context) {
	h.LogRequest(c, "Generating deck from text")

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.flashcardService.Generate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UploadDocument handles POST /decks/upload
func (h *DeckHandler) UploadDocument(c *gin.Context) {
	h.LogRequest(c, "Generating deck from uploaded document")

	if !h.parseMultipart(c, h.maxUploadBytes) {
		return
	}

	opts, err := parseUploadOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid generation options",
			Details: err.Error(),
		})
		return
	}

	fileHeader, data, ok := h.readUpload(c, "file", h.maxUploadBytes)
	if !ok {
		return
	}

	result, err := h.flashcardService.GenerateFromFile(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
		opts,
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportDeck handles POST /decks/export. The format query parameter, when
// present, overrides the format in the body.
func (h *DeckHandler) ExportDeck(c *gin.Context) {
	h.LogRequest(c, "Exporting deck")

	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if format := strings.TrimSpace(c.Query("format")); format != "" {
		req.Format = models.ExportFormat(strings.ToLower(format))
	}
	if req.Format == "" {
		req.Format = models.ExportJSON
	}

	result, err := h.importExportService.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	setAttachment(c, result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ImportDeck handles POST /decks/import
func (h *DeckHandler) ImportDeck(c *gin.Context) {
	h.LogRequest(c, "Importing deck")

	if !h.parseMultipart(c, h.maxUploadBytes) {
		return
	}

	fileHeader, data, ok := h.readUpload(c, "file", h.maxUploadBytes)
	if !ok {
		return
	}

	result, err := h.importExportService.ImportDeckFromFile(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InvalidateAnalyses handles DELETE /decks/analyses. The optional hash query
// parameter limits the purge to one document.
func (h *DeckHandler) InvalidateAnalyses(c *gin.Context) {
	h.LogRequest(c, "Invalidating cached analyses")

	var req models.InvalidateAnalysesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	if err := h.flashcardService.InvalidateAnalyses(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Cached analyses invalidated", gin.H{"hash": req.Hash})
}
