package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	"github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	"github.com/yanqian/doc-summarizer/internal/infra/config"
	"github.com/yanqian/doc-summarizer/pkg/logger"
)

const (
	defaultLogLines = 50
	maxLogLines     = 1000
	// multipartOverhead leaves room for form boundaries and text fields.
	multipartOverhead = 1 << 20
)

// Handler wires the HTTP transport to the summarizer service.
type Handler struct {
	svc            summarizer.Service
	maxUploadBytes int64
	logDir         string
	logFilePrefix  string
	now            func() time.Time
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, svc summarizer.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:            svc,
		maxUploadBytes: cfg.HTTP.MaxUploadBytes,
		logDir:         cfg.Log.Dir,
		logFilePrefix:  cfg.Log.FilePrefix,
		now:            time.Now,
		logger:         logger.With("component", "http.handler"),
	}
}

// Status reports whether the service is ready to summarize.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

// DocumentInfo extracts an upload and returns its metadata without summarizing.
func (h *Handler) DocumentInfo(c *gin.Context) {
	upload, httpErr := h.readUpload(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	info, err := h.svc.Describe(c.Request.Context(), upload)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, info)
}

// Summarize runs the pipeline synchronously and returns the Result.
func (h *Handler) Summarize(c *gin.Context) {
	upload, cfg, httpErr := h.readSummaryRequest(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	result, err := h.svc.Summarize(c.Request.Context(), upload, cfg, nil)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// SummarizeStream reports pipeline progress using Server-Sent Events and ends
// with either a result or an error event.
func (h *Handler) SummarizeStream(c *gin.Context) {
	upload, cfg, httpErr := h.readSummaryRequest(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	stream, err := h.svc.StreamSummary(c.Request.Context(), upload, cfg)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for ev := range stream {
		name, payload := "progress", any(ev.Progress)
		switch {
		case ev.Result != nil:
			name, payload = "result", ev.Result
		case ev.Error != nil:
			name, payload = "error", ev.Error
		}
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Error("marshal stream event failed", "event", name, "error", err)
			continue
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
		flusher.Flush()
	}
}

// Download serves a finished summary as a plain text attachment.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, summarizer.CodeInvalidInput, "invalid summary id", err))
		return
	}

	result, err := h.svc.Result(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.DownloadName}))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Summary))
}

// RecentLogs returns the tail of today's log file.
func (h *Handler) RecentLogs(c *gin.Context) {
	lines := defaultLogLines
	if raw := c.Query("lines"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, summarizer.CodeInvalidInput, "lines must be a positive integer", err))
			return
		}
		lines = min(parsed, maxLogLines)
	}

	entries, err := logger.RecentLines(h.logDir, h.logFilePrefix, h.now(), lines)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "log_read_failed", "could not read log file", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": entries})
}

// LogStats describes the log directory.
func (h *Handler) LogStats(c *gin.Context) {
	stats, err := logger.DirStats(h.logDir)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "log_read_failed", "could not read log directory", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// readSummaryRequest parses the multipart form. A missing file is passed on
// as an empty upload so the service can report a missing credential first.
func (h *Handler) readSummaryRequest(c *gin.Context) (document.Upload, summarizer.ProcessingConfig, *HTTPError) {
	upload, httpErr := h.readUpload(c)
	if httpErr != nil && httpErr.Code != "missing_file" {
		return document.Upload{}, summarizer.ProcessingConfig{}, httpErr
	}

	var cfg summarizer.ProcessingConfig
	var err error
	if cfg.ChunkSize, err = formInt(c, "chunkSize"); err != nil {
		return document.Upload{}, cfg, NewHTTPError(http.StatusBadRequest, summarizer.CodeInvalidInput, "chunkSize must be an integer", err)
	}
	if cfg.ChunkOverlap, err = formInt(c, "chunkOverlap"); err != nil {
		return document.Upload{}, cfg, NewHTTPError(http.StatusBadRequest, summarizer.CodeInvalidInput, "chunkOverlap must be an integer", err)
	}
	return upload, cfg, nil
}

func (h *Handler) readUpload(c *gin.Context) (document.Upload, *HTTPError) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return document.Upload{}, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file is too large", err)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return document.Upload{}, NewHTTPError(http.StatusBadRequest, "missing_file", "a file must be uploaded in the \"file\" field", err)
		default:
			return document.Upload{}, NewHTTPError(http.StatusBadRequest, summarizer.CodeInvalidInput, "could not read upload", err)
		}
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return document.Upload{}, NewHTTPError(http.StatusBadRequest, summarizer.CodeInvalidInput, "could not read upload", err)
	}
	if h.maxUploadBytes > 0 && int64(len(content)) > h.maxUploadBytes {
		return document.Upload{}, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file is too large", nil)
	}
	return document.Upload{Filename: header.Filename, Content: content}, nil
}

func formInt(c *gin.Context, field string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
