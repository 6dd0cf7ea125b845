package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
)

// ExportSummary is a history entry with a fresh download link.
type ExportSummary struct {
	models.ExportRecord
	DownloadURL string `json:"download_url,omitempty"`
}

// ExportsResponse represents the response structure for the history API
type ExportsResponse struct {
	Exports     []ExportSummary `json:"exports"`
	Total       int64           `json:"total"`
	CurrentPage int             `json:"current_page"`
	TotalPages  int             `json:"total_pages"`
}

// ExportsHandler pages through past exports, newest first
func ExportsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !utils.HistoryEnabled() {
		utils.RespondError(w, nil, utils.ErrHistoryDisabled.Error(), http.StatusServiceUnavailable)
		return
	}

	page, limit := pagination(r)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, total, err := utils.ListExportRecords(ctx, page, limit)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	// Stored files get a presigned link; the key itself is not usable by clients
	exports := make([]ExportSummary, 0, len(records))
	for _, rec := range records {
		summary := ExportSummary{ExportRecord: rec}
		if rec.S3Key != "" {
			if url, err := utils.GetPresignedURL(r.Context(), rec.S3Key); err == nil {
				summary.DownloadURL = url
			}
		}
		exports = append(exports, summary)
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	utils.RespondJSON(w, http.StatusOK, ExportsResponse{
		Exports:     exports,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
	})
}

// pagination reads page and limit, defaulting to 1 and 10. limit is capped
// at 100.
func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 10

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
