package api

import (
	"context"
	"net/http"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

// startedAt stands in for the install time when no database is connected.
var startedAt = time.Now().UTC()

// StatusResponse describes the running service.
type StatusResponse struct {
	Status      string    `json:"status"`
	InstalledAt time.Time `json:"installed_at"`
	History     bool      `json:"history"`
	Storage     bool      `json:"storage"`
}

// StatusHandler reports the install timestamp and which backends are enabled
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:      "ok",
		InstalledAt: startedAt,
		History:     utils.HistoryEnabled(),
		Storage:     utils.S3Enabled(),
	}

	if resp.History {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		info, err := utils.EnsureInstallTimestamp(ctx, startedAt)
		if err != nil {
			log.WithError(err).Warn("Could not read install timestamp")
		} else {
			resp.InstalledAt = info.InstalledAt
		}
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}
