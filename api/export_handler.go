package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/exporter"
	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers"
	"github.com/raushankrgupta/shopify-product-exporter/shopifycsv"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

var (
	exportService *exporter.Exporter
	serviceMu     sync.Mutex
)

// SetExporter replaces the exporter used by the handlers.
func SetExporter(e *exporter.Exporter) {
	serviceMu.Lock()
	defer serviceMu.Unlock()
	exportService = e
}

func getExporter() *exporter.Exporter {
	serviceMu.Lock()
	defer serviceMu.Unlock()
	if exportService == nil {
		exportService = exporter.New(nil, nil)
	}
	return exportService
}

// ExportRequest is accepted as query parameters or as a JSON body.
type ExportRequest struct {
	URL    string `json:"url"`
	Mode   string `json:"mode"`
	Schema string `json:"schema"`
}

func parseExportRequest(r *http.Request) ExportRequest {
	q := r.URL.Query()
	req := ExportRequest{URL: q.Get("url"), Mode: q.Get("mode"), Schema: q.Get("schema")}
	if req.URL == "" && r.Method == http.MethodPost {
		var body ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			req = body
		}
	}
	return req
}

// toRun validates the request and turns it into an exporter request.
func (req ExportRequest) toRun(ctx context.Context) (exporter.Request, error) {
	target := strings.TrimSpace(req.URL)
	if target == "" {
		return exporter.Request{}, errors.New("Please provide a 'url' query parameter or JSON body")
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	mode, err := scrapers.ParseMode(req.Mode)
	if err != nil {
		return exporter.Request{}, err
	}

	schemaName := req.Schema
	if schemaName == "" {
		schemaName = config.ExportSchema
	}
	schema, err := shopifycsv.SchemaByName(strings.ToLower(schemaName))
	if err != nil {
		return exporter.Request{}, err
	}

	if resolved, err := utils.ResolveRedirects(ctx, target, config.UserAgent); err == nil {
		target = resolved
	}

	return exporter.Request{ID: uuid.NewString(), URL: target, Mode: mode, Schema: schema}, nil
}

// failureStatus maps an export error to an HTTP status.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, exporter.ErrNotStorefront),
		errors.Is(err, exporter.ErrNoProductsFound),
		errors.Is(err, exporter.ErrUnparseable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// ExportHandler runs one export and answers with the CSV file
func ExportHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		log.Info(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Export API]")

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	run, err := parseExportRequest(r).toRun(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}
	if subject, err := GetUserIDFromContext(r.Context()); err == nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Requested by: %s", subject))
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Export %s: %s (mode=%s, schema=%s)", run.ID, run.URL, run.Mode, run.Schema.Name))

	result, runErr := getExporter().Run(r.Context(), run, nil)
	downloadURL := recordExport(run, result, runErr, &logMessageBuilder)
	if runErr != nil {
		utils.RespondError(w, &logMessageBuilder, runErr.Error(), failureStatus(runErr))
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Exported %d products via %s", len(result.Products), result.Strategy))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	w.Header().Set("X-Export-Id", result.ID)
	w.Header().Set("X-Product-Count", strconv.Itoa(len(result.Products)))
	if downloadURL != "" {
		w.Header().Set("X-Download-Url", downloadURL)
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.CSV))
}

// recordExport stores the CSV and the history entry of a finished run when
// storage is configured, sends the notification mail and returns a download
// link for the stored file, if any.
func recordExport(run exporter.Request, result *exporter.Result, runErr error, logMessageBuilder *strings.Builder) string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec := models.ExportRecord{
		ID:        run.ID,
		StoreURL:  run.URL,
		Mode:      string(run.Mode),
		Schema:    run.Schema.Name,
		Status:    "completed",
		CreatedAt: time.Now().UTC(),
	}
	if runErr != nil {
		rec.Status = "failed"
		rec.Error = runErr.Error()
	}

	var downloadURL string
	if result != nil {
		rec.ProductCount = len(result.Products)
		rec.Filename = result.Filename

		if utils.S3Enabled() {
			key, err := utils.UploadExportCSV(ctx, result.Filename, result.CSV)
			if err != nil {
				utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Failed to upload CSV: %v", err))
			} else {
				rec.S3Key = key
				if url, err := utils.GetPresignedURL(ctx, key); err == nil {
					downloadURL = url
				}
				utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("CSV stored as %s", key))
			}
		}
	}

	if utils.HistoryEnabled() {
		if err := utils.SaveExportRecord(ctx, &rec); err != nil {
			utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Failed to save export record: %v", err))
		} else {
			utils.AddToLogMessage(logMessageBuilder, "Export record saved to MongoDB")
		}
	}

	go func(rec models.ExportRecord) {
		if err := utils.SendExportNotification(&rec, downloadURL); err != nil {
			log.WithError(err).WithField("export", rec.ID).Warn("Export notification failed")
		}
	}(rec)

	return downloadURL
}
