package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/shopify-product-exporter/scrapers/shopify"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

// DetectResponse describes what an export started from a page would cover.
type DetectResponse struct {
	URL             string `json:"url"`
	StoreURL        string `json:"store_url"`
	IsShopify       bool   `json:"is_shopify"`
	Collection      string `json:"collection,omitempty"`
	CollectionTitle string `json:"collection_title,omitempty"`
	Product         string `json:"product,omitempty"`
}

// DetectHandler reports whether a page belongs to a Shopify storefront
func DetectHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		log.Info(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Detect API]")

	if r.Method != http.MethodGet {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" {
		utils.RespondError(w, &logMessageBuilder, "Please provide a 'url' query parameter", http.StatusBadRequest)
		return
	}
	if !strings.Contains(pageURL, "://") {
		pageURL = "https://" + pageURL
	}

	svc := getExporter()
	page, err := svc.Loader.Load(r.Context(), pageURL)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Could not load page: %v", err), http.StatusBadGateway)
		return
	}

	resp := DetectResponse{
		URL:       pageURL,
		StoreURL:  page.StoreURL(),
		IsShopify: shopify.IsStorefront(page.Doc, svc.Rules.StorefrontMarkers),
		Product:   shopify.ProductHandle(page.Path()),
	}
	if slug := shopify.CollectionSlug(page.Path()); slug != "" {
		resp.Collection = slug
		resp.CollectionTitle = shopify.CollectionTitle(page.Doc, slug, svc.Rules.CollectionTitle)
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("%s shopify=%t", pageURL, resp.IsShopify))
	utils.RespondJSON(w, http.StatusOK, resp)
}
