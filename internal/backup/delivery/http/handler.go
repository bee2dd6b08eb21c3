package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/pos-ledger/internal/backup/domain"
	"github.com/tair/pos-ledger/internal/backup/usecase"
	"github.com/tair/pos-ledger/internal/httpx"
	userdomain "github.com/tair/pos-ledger/internal/user/domain"
)

// maxBackupBytes bounds an uploaded restore document
const maxBackupBytes = 64 << 20

// BackupHandler handles backup and restore requests
type BackupHandler struct {
	backup  *usecase.BackupHandler
	dir     string
	gate    *httpx.Gate
	metrics *httpx.Metrics
}

// NewBackupHandler creates a new backup HTTP handler writing files into dir
func NewBackupHandler(backup *usecase.BackupHandler, dir string, gate *httpx.Gate, metrics *httpx.Metrics) *BackupHandler {
	return &BackupHandler{backup: backup, dir: dir, gate: gate, metrics: metrics}
}

// RegisterRoutes registers the backup routes
func (h *BackupHandler) RegisterRoutes(router *mux.Router) {
	admin := h.gate.Require(userdomain.RoleAdmin)

	router.HandleFunc("/api/backup", h.metrics.Wrap("/api/backup", admin(h.DownloadBackup))).Methods("GET")
	router.HandleFunc("/api/backup", h.metrics.Wrap("/api/backup", admin(h.CreateBackup))).Methods("POST")
	router.HandleFunc("/api/backup/restore", h.metrics.Wrap("/api/backup/restore", admin(h.RestoreBackup))).Methods("POST")
}

// CreateBackup handles POST /api/backup
func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	path, err := h.backup.Write(r.Context(), h.dir)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusCreated, "Backup created", map[string]string{"path": path})
}

// DownloadBackup handles GET /api/backup
func (h *BackupHandler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.backup.Create(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.FileName(b.Timestamp)))
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(b)
}

// RestoreBackup handles POST /api/backup/restore with a backup document body
func (h *BackupHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		httpx.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := usecase.Decode(data)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.backup.Restore(r.Context(), b); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondMessage(w, http.StatusOK, "Backup restored")
}
