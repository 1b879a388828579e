// Command simulator feeds synthetic greenhouse readings into the service,
// either over the queue or through POST /api/data.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/queue"
	"github.com/soltixdb/greenhouse/internal/services"
)

type sink interface {
	send(ctx context.Context, req models.ReadingRequest) error
	close() error
}

type queueSink struct {
	publisher queue.Publisher
	subject   string
}

func (s *queueSink) send(ctx context.Context, req models.ReadingRequest) error {
	return queue.PublishJSON(ctx, s.publisher, s.subject, req)
}

func (s *queueSink) close() error {
	return s.publisher.Close()
}

type httpSink struct {
	client *http.Client
	url    string
	apiKey string
}

func (s *httpSink) send(ctx context.Context, req models.ReadingRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func (s *httpSink) close() error {
	s.client.CloseIdleConnections()
	return nil
}

func toRequest(r analytics.Reading) models.ReadingRequest {
	return models.ReadingRequest{
		Temperature:    r.Temperature,
		Humidity:       r.Humidity,
		SoilMoisture:   r.SoilMoisture,
		LightIntensity: r.LightIntensity,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file (queue settings)")
	mode := flag.String("mode", "http", "Delivery mode: http or queue")
	url := flag.String("url", "http://localhost:3000/api/data", "Reading endpoint for http mode")
	apiKey := flag.String("api-key", "", "API key for http mode")
	interval := flag.Duration("interval", 15*time.Second, "Time between readings")
	count := flag.Int("count", 0, "Readings to send, 0 runs until interrupted")
	backfill := flag.Int("backfill", 0, "Historic readings to send before the live feed")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	logger := logging.NewDevelopment()

	var out sink
	switch *mode {
	case "http":
		out = &httpSink{client: &http.Client{Timeout: 10 * time.Second}, url: *url, apiKey: *apiKey}
	case "queue":
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		q, err := queue.NewQueue(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "type", cfg.Queue.Type, "error", err)
		}
		out = &queueSink{publisher: q, subject: cfg.Queue.ReadingsSubject}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want http or queue)\n", *mode)
		os.Exit(2)
	}
	defer func() { _ = out.close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := services.NewSyntheticSource(*seed)

	sent, failed := 0, 0
	emit := func(r analytics.Reading) {
		if err := out.send(ctx, toRequest(r)); err != nil {
			failed++
			logger.Warn("Failed to send reading", "error", err)
			return
		}
		sent++
		logger.Debug("Reading sent", "temperature", r.Temperature, "humidity", r.Humidity, "created_at", r.CreatedAt)
	}

	if *backfill > 0 {
		logger.Info("Sending backfill", "readings", *backfill)
		for _, r := range gen.Generate(*backfill) {
			emit(r)
		}
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	logger.Info("Simulator running", "mode", *mode, "interval", interval.String(), "count", *count)
	for {
		emit(gen.Generate(1)[0])
		if *count > 0 && sent+failed >= *count+*backfill {
			break
		}
		select {
		case <-ctx.Done():
			logger.Info("Simulator stopped", "sent", sent, "failed", failed)
			return
		case <-ticker.C:
		}
	}
	logger.Info("Simulator finished", "sent", sent, "failed", failed)
}
