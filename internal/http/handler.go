package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"verification-service/internal/config"
	"verification-service/internal/domain/verification"
	"verification-service/internal/http/middleware"
	"verification-service/internal/service"
	"verification-service/internal/storage"
)

type Handler struct {
	registryService     *service.RegistryService
	verificationService *service.VerificationService
	exportService       *service.ExportService
	config              *config.Config
	log                 zerolog.Logger
	snapshots           *storage.SnapshotArchive
}

func NewHandler(
	registryService *service.RegistryService,
	verificationService *service.VerificationService,
	exportService *service.ExportService,
	cfg *config.Config,
	log zerolog.Logger,
	snapshots *storage.SnapshotArchive,
) *Handler {
	return &Handler{
		registryService:     registryService,
		verificationService: verificationService,
		exportService:       exportService,
		config:              cfg,
		log:                 log,
		snapshots:           snapshots,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints: scan ingest and registry management.
	// Registration is deliberately unauthenticated; access control for it
	// belongs to the surrounding platform, not this core.
	public := r.Group("/api/v1")
	{
		public.POST("/verify", h.verifyScan)
		public.POST("/verify/snapshot", h.verifyScanWithSnapshot)
		public.POST("/owners", h.registerOwner)
		public.GET("/owners", h.listOwners)
		public.GET("/owners/lookup", h.lookupOwner)
		public.DELETE("/owners/:owner_id", h.removeOwner)
		public.GET("/attempts", h.listAttempts)
		public.GET("/attempts/stats", h.attemptStats)
	}

	// Protected endpoints: exports require a platform token
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/export/owners", h.exportOwners)
		protected.GET("/export/attempts", h.exportAttempts)
	}
}

func (h *Handler) verifyScan(c *gin.Context) {
	var payload verification.ScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	h.log.Info().
		Str("scanned_text", payload.ScannedText).
		Float64("confidence", payload.Confidence).
		Msg("processing verification scan")

	result, err := h.verificationService.Verify(c.Request.Context(), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) verifyScanWithSnapshot(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		h.log.Warn().Err(err).Msg("failed to parse multipart request")
		c.JSON(http.StatusBadRequest, errorResponse("invalid multipart payload"))
		return
	}

	payloadValue := c.Request.FormValue("payload")
	if payloadValue == "" {
		c.JSON(http.StatusBadRequest, errorResponse("payload field is required"))
		return
	}

	var payload verification.ScanPayload
	if err := json.Unmarshal([]byte(payloadValue), &payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid payload json"))
		return
	}

	if file, header, err := c.Request.FormFile("snapshot"); err == nil {
		defer file.Close()
		if url := h.archiveSnapshot(c, payload.Confidence, file, header); url != "" {
			payload.SnapshotURL = url
		}
	}

	result, err := h.verificationService.Verify(c.Request.Context(), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

// archiveSnapshot uploads the captured frame when archiving is configured
// and the scan confidence falls below the review threshold. Archiving is
// best effort; the audit append is the hard guarantee, not this.
func (h *Handler) archiveSnapshot(c *gin.Context, confidence float64, file multipart.File, header *multipart.FileHeader) string {
	if h.snapshots == nil {
		return ""
	}
	if confidence >= h.config.Snapshot.ArchiveThreshold {
		return ""
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	url, err := h.snapshots.Store(c.Request.Context(), header.Filename, file, header.Size, contentType)
	if err != nil {
		h.log.Warn().
			Err(err).
			Str("filename", header.Filename).
			Msg("failed to archive snapshot, continuing without it")
		return ""
	}

	h.log.Debug().Str("snapshot_url", url).Msg("snapshot archived")
	return url
}

type registerOwnerRequest struct {
	OwnerID           string `json:"owner_id"`
	DisplayName       string `json:"display_name"`
	VehicleDescriptor string `json:"vehicle_descriptor"`
	Plate             string `json:"plate"`
}

func (h *Handler) registerOwner(c *gin.Context) {
	var req registerOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record, err := h.registryService.Register(c.Request.Context(), service.RegisterOwnerInput{
		OwnerID:           req.OwnerID,
		DisplayName:       req.DisplayName,
		VehicleDescriptor: req.VehicleDescriptor,
		Plate:             req.Plate,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listOwners(c *gin.Context) {
	records, err := h.registryService.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) lookupOwner(c *gin.Context) {
	plateQuery := strings.TrimSpace(c.Query("plate"))
	if plateQuery == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate parameter is required"))
		return
	}

	record, err := h.registryService.Lookup(c.Request.Context(), plateQuery)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) removeOwner(c *gin.Context) {
	ownerID := strings.TrimSpace(c.Param("owner_id"))
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, errorResponse("owner_id is required"))
		return
	}

	if err := h.registryService.Remove(c.Request.Context(), ownerID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) listAttempts(c *gin.Context) {
	var plateQuery *string
	if plate := strings.TrimSpace(c.Query("plate")); plate != "" {
		plateQuery = &plate
	}

	var from, to *string
	if f := strings.TrimSpace(c.Query("from")); f != "" {
		from = &f
	}
	if t := strings.TrimSpace(c.Query("to")); t != "" {
		to = &t
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := parseInt(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := parseInt(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	attempts, err := h.verificationService.FindAttempts(c.Request.Context(), plateQuery, from, to, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(attempts))
}

func (h *Handler) attemptStats(c *gin.Context) {
	stats, err := h.verificationService.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) exportOwners(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	workbook, err := h.exportService.OwnersWorkbook(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeWorkbook(c, workbook, fmt.Sprintf("owners-%s.xlsx", time.Now().UTC().Format("20060102")))
}

func (h *Handler) exportAttempts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var from, to *string
	if f := strings.TrimSpace(c.Query("from")); f != "" {
		from = &f
	}
	if t := strings.TrimSpace(c.Query("to")); t != "" {
		to = &t
	}

	workbook, err := h.exportService.AttemptsWorkbook(c.Request.Context(), principal, from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeWorkbook(c, workbook, fmt.Sprintf("attempts-%s.xlsx", time.Now().UTC().Format("20060102")))
}

func writeWorkbook(c *gin.Context, workbook *excelize.File, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := workbook.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrDuplicateKey):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
