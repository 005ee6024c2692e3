package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"market-breadth/src/analysis"
	"market-breadth/src/export"
	"market-breadth/src/helpers"
	"market-breadth/src/interfaces"
	"market-breadth/src/models"
	"market-breadth/src/storage"

	"github.com/gin-gonic/gin"
)

const quoteTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

func (s *APIServer) latest() (*models.MBreadthSnapshot, error) {
	if snap, ok := s.Live.Latest(); ok {
		return &snap, nil
	}
	if s.Store == nil {
		return nil, nil
	}
	return s.Store.Latest()
}

// -----------------------------------------------------------------------------

// statusFor maps validation failures to 400 and everything else to 500.
func statusFor(err error) int {
	var verr *helpers.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	var updated int64
	if snap, ok := s.Live.Latest(); ok {
		updated = snap.CapturedAt.Unix()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": updated,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getLatest(c *gin.Context) {
	snap, err := s.latest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getLive(c *gin.Context) {
	series := s.Live.All()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(series),
		"series": series,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHistory(c *gin.Context) {
	view := c.Query("view")
	if view == "" {
		view = "today"
		if c.Query("from") != "" || c.Query("to") != "" {
			view = "range"
		}
	}

	start, end, err := storage.ResolveView(view, c.Query("date"), c.Query("from"), c.Query("to"), s.Now())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	records, err := s.Store.QueryRange(start, end)
	if err != nil {
		s.Logger.Error("History query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []models.MBreadthSnapshot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"view":    view,
		"from":    start.Format(models.DateLayout),
		"to":      end.Format(models.DateLayout),
		"records": records,
		"summary": analysis.Summarize(records),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getFiles(c *gin.Context) {
	files := []string{}
	if lister, ok := s.Store.(interfaces.IFileLister); ok {
		names, err := lister.ListDataFiles()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		files = append(files, names...)
	}
	c.JSON(http.StatusOK, gin.H{
		"storage": s.Config.Storage.DBType,
		"files":   files,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getMetrics(c *gin.Context) {
	resp := gin.H{"live_points": s.Live.Len()}
	if s.Stats != nil {
		resp["poller"] = s.Stats.Stats()
	}
	if snap, ok := s.Live.Latest(); ok {
		resp["last_cycle"] = snap.Metrics
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	interval := s.Config.Poller.IntervalSeconds
	if s.Stats != nil {
		interval = s.Stats.Stats().IntervalSeconds
	}
	c.JSON(http.StatusOK, gin.H{
		"interval_seconds":  interval,
		"allowed_intervals": s.Config.Poller.AllowedIntervals,
		"market_hours_only": s.Config.Poller.MarketHoursOnly,
		"live_points":       s.Config.Poller.LivePoints,
		"index_symbol":      s.Config.DataSource.IndexSymbol,
		"batch_size":        s.Config.DataSource.BatchSize,
		"workers":           s.Config.DataSource.Workers,
		"thresholds":        s.Config.DataSource.Thresholds,
		"storage":           s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getQuote(c *gin.Context) {
	if s.Quotes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote lookup unavailable"})
		return
	}

	var codes []string
	for _, code := range strings.Split(c.Query("codes"), ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codes is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), quoteTimeout)
	defer cancel()

	quotes, err := s.Quotes.FetchQuotes(ctx, codes)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if quotes == nil {
		quotes = []models.MQuoteRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getExport(c *gin.Context) {
	saver, err := export.NewSaver(c.DefaultQuery("format", "csv"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end, err := storage.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	records, err := s.Store.QueryRange(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dir, err := os.MkdirTemp("", "breadth-export-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.RemoveAll(dir)

	name := fmt.Sprintf("%s_%s_%s.%s", s.Config.Storage.FilePrefix,
		start.Format("20060102"), end.Format("20060102"), saver.Extension())
	path := filepath.Join(dir, name)
	if err := saver.Save(records, path); err != nil {
		s.Logger.Error("Export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", saver.ContentType())
	c.FileAttachment(path, name)
}
