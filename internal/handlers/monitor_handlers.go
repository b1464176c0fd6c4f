// monitor_handlers.go
// Admin handlers over the monitoring store and the error classifier ring.
// These depend on the concrete monitor and classifier because they expose
// exactly what those components record.

package handlers

import (
	"net/http"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// MonitoringHandler serves the admin monitoring routes.
type MonitoringHandler struct {
	mon        *monitor.Monitor
	classifier *errclass.Classifier
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(mon *monitor.Monitor, classifier *errclass.Classifier) *MonitoringHandler {
	return &MonitoringHandler{
		mon:        mon,
		classifier: classifier,
	}
}

// Stats returns the aggregate monitoring counters.
func (h *MonitoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mon.Stats()
	if err != nil {
		writeError(w, r, h.classifier, err, "monitoring.stats")
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

// Logs returns every entry in the persisted monitoring store.
func (h *MonitoringHandler) Logs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.mon.Export()
	if err != nil {
		writeError(w, r, h.classifier, err, "monitoring.logs")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// ClearLogs erases the persisted monitoring store.
func (h *MonitoringHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.mon.Clear(); err != nil {
		writeError(w, r, h.classifier, err, "monitoring.clear")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": constants.MsgMonitoringCleared,
	})
}

// RecentErrors returns the classifier's in-memory ring of recently handled
// errors, newest first.
func (h *MonitoringHandler) RecentErrors(w http.ResponseWriter, r *http.Request) {
	records := h.classifier.Recent()

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(records),
		"errors": records,
	})
}
