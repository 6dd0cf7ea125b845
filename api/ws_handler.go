package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raushankrgupta/shopify-product-exporter/exporter"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ExportWSHandler runs one export per connection and streams its events. The
// export is described by the query string or, when that has no url, by the
// first JSON message from the client.
func ExportWSHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		log.Info(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Export WS]")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	req := parseExportRequest(r)
	if req.URL == "" {
		if err := conn.ReadJSON(&req); err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Invalid request message: %v", err))
			writeEvent(conn, exporter.Event{Type: exporter.EventError, Error: "Invalid export request"})
			return
		}
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	run, err := req.toRun(ctx)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, err.Error())
		writeEvent(conn, exporter.Event{Type: exporter.EventError, Error: err.Error()})
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Export %s: %s (mode=%s)", run.ID, run.URL, run.Mode))

	events := make(chan exporter.Event, 32)
	go func() {
		var runLog strings.Builder
		result, runErr := getExporter().Run(ctx, run, events)
		recordExport(run, result, runErr, &runLog)
		log.WithField("export", run.ID).Info(runLog.String())
	}()

	for {
		select {
		case ev := <-events:
			if err := writeEvent(conn, ev); err != nil {
				utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Client went away: %v", err))
				return
			}
			if ev.Type != exporter.EventProgress {
				utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Finished with %s", ev.Type))
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev exporter.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
