package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/bizlens/internal/cache"
	"github.com/andresuchdata/bizlens/internal/config"
	"github.com/andresuchdata/bizlens/internal/dataset"
	"github.com/andresuchdata/bizlens/internal/engine"
	"github.com/andresuchdata/bizlens/internal/features"
	"github.com/andresuchdata/bizlens/internal/industry"
	"github.com/andresuchdata/bizlens/internal/report"
)

// maxUploadSize caps uploaded CSVs at 25 MB.
const maxUploadSize = 25 << 20

// AnalysisHandler serves CSV uploads through the analysis pipeline.
type AnalysisHandler struct {
	engine   *engine.Engine
	cache    cache.AnalysisCache
	defaults config.AnalysisConfig
}

func NewAnalysisHandler(eng *engine.Engine, c cache.AnalysisCache, defaults config.AnalysisConfig) *AnalysisHandler {
	if c == nil {
		c = cache.NewNoopAnalysisCache()
	}
	return &AnalysisHandler{
		engine:   eng,
		cache:    c,
		defaults: defaults,
	}
}

type analysisResponse struct {
	Result *engine.Result `json:"result"`
	Report string         `json:"report"`
	Cached bool           `json:"cached"`
}

// Analyze accepts a multipart upload with a required "file" part (inventory
// CSV, unified or legacy format), an optional "sales_file" part, and
// optional "industry" and "business_name" fields.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	content, err := readUpload(c, "file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if content == nil {
		errorResponse(c, http.StatusBadRequest, "a CSV file upload is required in the 'file' field")
		return
	}

	salesContent, err := readUpload(c, "sales_file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	industryKey := c.PostForm("industry")
	if industryKey == "" {
		industryKey = h.defaults.DefaultIndustry
	}
	businessName := c.PostForm("business_name")
	if businessName == "" {
		businessName = h.defaults.BusinessName
	}

	key := cache.Key{
		Industry:     industryKey,
		BusinessName: businessName,
		Content:      content,
		SalesContent: salesContent,
	}
	if entry, ok, err := h.cache.Get(c.Request.Context(), key); err != nil {
		log.Warn().Err(err).Msg("analysis cache read failed")
	} else if ok {
		c.JSON(http.StatusOK, analysisResponse{Result: entry.Result, Report: entry.Report, Cached: true})
		return
	}

	table, err := dataset.FromReader(bytes.NewReader(content))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var salesTable *dataset.Table
	if salesContent != nil {
		salesTable, err = dataset.FromReader(bytes.NewReader(salesContent))
		if err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := h.engine.AnalyzeTable(c.Request.Context(), industryKey, table, salesTable)
	if err != nil {
		errorResponse(c, statusFor(err), err.Error())
		return
	}

	rendered := report.NewGenerator(0).Generate(report.Input{
		BusinessName: businessName,
		Industry:     result.Industry,
		GeneratedAt:  time.Now(),
		Insights:     result.Insights,
	})

	if err := h.cache.Set(c.Request.Context(), key, &cache.Entry{Result: result, Report: rendered}); err != nil {
		log.Warn().Err(err).Msg("analysis cache write failed")
	}

	c.JSON(http.StatusOK, analysisResponse{Result: result, Report: rendered})
}

// Industries lists the industry contexts available for analysis.
func (h *AnalysisHandler) Industries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"industries": h.engine.Industries()})
}

func readUpload(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fileHeader.Size > maxUploadSize {
		return nil, errors.New("uploaded file exceeds the 25 MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	return io.ReadAll(io.LimitReader(file, maxUploadSize))
}

func statusFor(err error) int {
	var (
		validationErr *dataset.ValidationError
		extractionErr *features.ExtractionError
		contextErr    *industry.ContextError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &contextErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
