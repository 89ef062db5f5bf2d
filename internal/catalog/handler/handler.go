// Package handler exposes the catalog HTTP endpoints.
package handler

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fitment_chat_backend/internal/catalog/repository"
	"fitment_chat_backend/internal/catalog/service"
	"fitment_chat_backend/internal/catalog/transport"
	"fitment_chat_backend/platform/apperr"
	"fitment_chat_backend/platform/config"
	"fitment_chat_backend/platform/httpkit"
	"fitment_chat_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingIDs       = "missing parameters: carId and wheelId are required"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	svc  *service.Service
	repo repository.Repository
	cfg  config.DatabaseConfig
	val  *validator.Validator
}

// New creates a new catalog handler. The repository is used directly by the
// diagnostics endpoints.
func New(svc *service.Service, repo repository.Repository, cfg config.DatabaseConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, repo: repo, cfg: cfg, val: val}
}

// Fitment retrieves the exact fitment row plus homologation list.
// POST /fitment
func (h *Handler) Fitment(c *gin.Context) {
	var req transport.FitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingIDs, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingIDs, nil)
		return
	}

	fitment, err := h.svc.ExactFitment(c.Request.Context(), req.CarID, req.WheelID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			httpkit.OK(c, transport.FitmentResponse{
				OK:      false,
				CarID:   req.CarID,
				WheelID: req.WheelID,
				Error:   "no combination found",
			})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.FitmentResponse{
		OK:            true,
		CarID:         req.CarID,
		WheelID:       req.WheelID,
		Fitment:       transport.NewFitmentView(fitment),
		Homologations: fitment.Homologations,
	})
}

// FitmentDebug performs the same lookup with the raw row echoed.
// GET /fitment-debug?car=&wheel=
func (h *Handler) FitmentDebug(c *gin.Context) {
	carID, err1 := strconv.ParseInt(c.Query("car"), 10, 64)
	wheelID, err2 := strconv.ParseInt(c.Query("wheel"), 10, 64)
	if err1 != nil || err2 != nil || carID <= 0 || wheelID <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "missing parameters: use /fitment-debug?car=ID&wheel=ID", nil)
		return
	}

	raw, err := h.svc.RawFitment(c.Request.Context(), carID, wheelID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			httpkit.OK(c, transport.FitmentResponse{
				OK:      false,
				CarID:   carID,
				WheelID: wheelID,
				Error:   "no combination found for these ids",
			})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	fitment, err := h.svc.ExactFitment(c.Request.Context(), carID, wheelID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FitmentDebugResponse{
		FitmentResponse: transport.FitmentResponse{
			OK:            true,
			CarID:         carID,
			WheelID:       wheelID,
			Fitment:       transport.NewFitmentView(fitment),
			Homologations: fitment.Homologations,
		},
		Raw: raw,
	})
}

// HealthDB verifies catalog connectivity and reports the server version.
// GET /health-db
func (h *Handler) HealthDB(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	version, err := h.repo.Version(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	httpkit.OK(c, gin.H{"ok": true, "version": version})
}

// DBTables lists the tables visible in the catalog store.
// GET /db-tables
func (h *Handler) DBTables(c *gin.Context) {
	tables, err := h.repo.ListTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	httpkit.OK(c, gin.H{"ok": true, "tables": tables})
}

// DebugTables lists the known catalog tables with row counts.
// GET /debug-tables
func (h *Handler) DebugTables(c *gin.Context) {
	counts, err := h.repo.ListTableCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	httpkit.OK(c, gin.H{"ok": true, "tables": counts})
}

// DBApplicationsSample returns raw applications rows for inspection.
// GET /db-applications-sample
func (h *Handler) DBApplicationsSample(c *gin.Context) {
	rows, err := h.repo.SampleApplications(c.Request.Context(), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	httpkit.OK(c, gin.H{"ok": true, "count": len(rows), "rows": rows})
}

// TCPCheck probes raw TCP reachability of the catalog host, for diagnosing
// firewall problems that the pooled connection hides behind retries.
// GET /tcp-check
func (h *Handler) TCPCheck(c *gin.Context) {
	host := h.cfg.GetDatabaseHost()
	const port = "5432"
	startedAt := time.Now().UTC().Format(time.RFC3339)

	if host == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":        false,
			"error":     "database host not configured",
			"timestamp": startedAt,
		})
		return
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 5*time.Second)
	if err != nil {
		status := http.StatusInternalServerError
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{
			"ok":        false,
			"error":     err.Error(),
			"host":      host,
			"port":      port,
			"timestamp": startedAt,
		})
		return
	}
	_ = conn.Close()

	httpkit.OK(c, gin.H{
		"ok":        true,
		"note":      "tcp connect ok (port open)",
		"host":      host,
		"port":      port,
		"timestamp": startedAt,
	})
}
