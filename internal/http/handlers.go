package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
	"github.com/quantumauth-io/algo-quickstart/internal/metrics"
	"github.com/quantumauth-io/algo-quickstart/internal/pinning"
)

// Pinner is satisfied by *pinning.Service.
type Pinner interface {
	Pin(ctx context.Context, content []byte, filename string) (pinning.Result, error)
}

type Handler struct {
	pinner    Pinner
	fetcher   pinning.Fetcher
	metrics   *metrics.Metrics
	maxUpload int64
	now       func() time.Time
}

// NewHandler wires the pin endpoints. fetcher and m may be nil.
func NewHandler(pinner Pinner, fetcher pinning.Fetcher, m *metrics.Metrics, maxUpload int64) *Handler {
	return &Handler{
		pinner:    pinner,
		fetcher:   fetcher,
		metrics:   m,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.Header(HeaderCacheControl, CacheControlNone)
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true, JSONKeyTS: h.now().UnixMilli()})
}

// POST /api/pin-image
func (h *Handler) PinImage(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	fh, err := c.FormFile(constants.UploadFieldName)
	if err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{JSONKeyError: HTTPErrorUploadTooLargeText})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorNoFileUploadedText})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorNoFileUploadedText})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorNoFileUploadedText})
		return
	}

	start := time.Now()
	res, err := h.pinner.Pin(c.Request.Context(), content, fh.Filename)
	if err != nil {
		if failure.Is(err, failure.KindMissingContent) {
			h.recordPin(metrics.OutcomeMissingContent, start)
			c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorNoFileUploadedText})
			return
		}
		h.recordPin(metrics.OutcomeFailure, start)
		log.Error("pin failed",
			"request_id", c.GetString(ContextKeyRequestID),
			"filename", fh.Filename,
			"kind", failure.KindOf(err),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: pinning.UserMessage(err)})
		return
	}

	h.recordPin(metrics.OutcomeSuccess, start)
	c.JSON(http.StatusOK, gin.H{JSONKeyMetadataURL: res.MetadataLocator})
}

// GET /ipfs/:cid
func (h *Handler) FetchContent(c *gin.Context) {
	data, err := h.fetcher.Fetch(c.Request.Context(), constants.IPFSPrefix+c.Param("cid"))
	switch {
	case err == nil:
	case errors.Is(err, pinning.ErrInvalidCID):
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidCIDText})
		return
	case errors.Is(err, pinning.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{JSONKeyError: HTTPErrorNotFoundText})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: err.Error()})
		return
	}
	c.Header(HeaderCacheControl, "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *Handler) recordPin(outcome string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordPin(outcome, time.Since(start))
	}
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
