package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/exporter"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/shopifycsv"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		pageURL    = flag.String("url", "", "storefront page to export from (collection, product or any store page)")
		mode       = flag.String("mode", "collection", "what to export: product, collection or all")
		schemaName = flag.String("schema", "", "CSV layout: legacy or current (default from EXPORT_SCHEMA)")
		outDir     = flag.String("out", ".", "directory the CSV file is written to")
		enrich     = flag.Bool("enrich", false, "look up collection titles for every product of a full catalog export")
		browser    = flag.Bool("browser", false, "fall back to a headless browser when the page cannot be fetched directly")
		timeout    = flag.Duration("timeout", 30*time.Minute, "give up after this long")
		issueToken = flag.String("issue-token", "", "print an API token for this subject and exit")
		tokenTTL   = flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of a token issued with -issue-token")
	)
	flag.Parse()

	config.LoadConfig()

	if *issueToken != "" {
		token, err := utils.GenerateToken(*issueToken, *tokenTTL)
		if err != nil {
			log.Fatalf("issue token failed: %v", err)
		}
		fmt.Println(token)
		return
	}

	if *pageURL == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *enrich {
		config.EnrichCollections = true
	}
	if *browser {
		config.BrowserFallback = true
	}

	m, err := scrapers.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	if *schemaName == "" {
		*schemaName = config.ExportSchema
	}
	schema, err := shopifycsv.SchemaByName(*schemaName)
	if err != nil {
		log.Fatal(err)
	}
	rules, err := config.LoadSelectorRules(config.SelectorRulesFile)
	if err != nil {
		log.WithError(err).Warn("Using default selector rules")
	}

	target := *pageURL
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if resolved, err := utils.ResolveRedirects(ctx, target, config.UserAgent); err == nil {
		target = resolved
	}

	exp := exporter.New(base.NewHTTPClient(), rules)
	events := make(chan exporter.Event, 16)
	done := make(chan error, 1)
	var result *exporter.Result
	go func() {
		var err error
		result, err = exp.Run(ctx, exporter.Request{ID: uuid.NewString(), URL: target, Mode: m, Schema: schema}, events)
		done <- err
	}()

	var runErr error
wait:
	for {
		select {
		case ev := <-events:
			if ev.Type == exporter.EventProgress {
				fmt.Fprintf(os.Stderr, "\rfetched %d of ~%d", ev.Current, ev.Total)
				continue
			}
			runErr = <-done
			break wait
		case runErr = <-done:
			break wait
		}
	}
	fmt.Fprintln(os.Stderr)

	if runErr != nil {
		log.Fatalf("export failed: %v", runErr)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir failed: %v", err)
	}
	outPath := filepath.Join(*outDir, result.Filename)
	if err := os.WriteFile(outPath, []byte(result.CSV), 0o644); err != nil {
		log.Fatalf("write csv failed: %v", err)
	}

	log.WithFields(log.Fields{
		"products": len(result.Products),
		"strategy": result.Strategy,
		"schema":   schema.Name,
	}).Infof("Exported to %s", outPath)
}
