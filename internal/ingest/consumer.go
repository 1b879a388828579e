// Package ingest stores readings that field devices publish on the queue.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/metrics"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/queue"
	"github.com/soltixdb/greenhouse/internal/services"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// Consumer subscribes to the readings subject and stores every valid reading.
// A payload is one reading object or an array of them.
//
// Malformed or invalid payloads are acknowledged and dropped. Store failures
// are returned to the queue so the backend can redeliver.
type Consumer struct {
	logger     *logging.Logger
	subscriber queue.Subscriber
	subject    string
	readings   *services.ReadingService
	timeout    time.Duration
}

// NewConsumer creates a Consumer
func NewConsumer(logger *logging.Logger, subscriber queue.Subscriber, subject string, readings *services.ReadingService) *Consumer {
	return &Consumer{
		logger:     logger,
		subscriber: subscriber,
		subject:    subject,
		readings:   readings,
		timeout:    utils.StoreQueryTimeout,
	}
}

// Start subscribes to the readings subject
func (c *Consumer) Start() error {
	if err := c.subscriber.Subscribe(c.subject, c.Handle); err != nil {
		return err
	}
	c.logger.Info("Ingest consumer started", "subject", c.subject)
	return nil
}

// Stop unsubscribes from the readings subject
func (c *Consumer) Stop() error {
	return c.subscriber.Unsubscribe(c.subject)
}

// Handle processes one queue message
func (c *Consumer) Handle(data []byte) error {
	requests, err := decode(data)
	if err != nil {
		metrics.ObserveIngest(services.IngestSourceQueue, metrics.ResultInvalid, 0)
		c.logger.Warn("Dropping malformed reading payload", "subject", c.subject, "bytes", len(data), "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	for i := range requests {
		_, err := c.readings.Create(ctx, &requests[i], services.IngestSourceQueue)
		if err == nil {
			continue
		}

		var svcErr *services.ServiceError
		if errors.As(err, &svcErr) && svcErr.Code != services.CodeStoreUnavailable {
			c.logger.Warn("Dropping invalid reading", "subject", c.subject, "code", svcErr.Code, "error", svcErr.Message)
			continue
		}
		// earlier readings of the batch are stored again on redelivery
		return err
	}
	return nil
}

// decode accepts a single reading object or an array of readings
func decode(data []byte) ([]models.ReadingRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []models.ReadingRequest
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	var req models.ReadingRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return []models.ReadingRequest{req}, nil
}
