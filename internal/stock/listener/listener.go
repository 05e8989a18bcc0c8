// Package listener consumes order events and applies the resulting
// stock deductions through the product use case, so the same guards
// (ownership, conditional update, movement audit) apply to event-driven
// and API-driven adjustments alike.
package listener

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/product"
	"github.com/vendora/catalog-service/internal/product/dto"
	"github.com/vendora/catalog-service/pkg/broker"
	"go.uber.org/zap"
)

type OrderItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type OrderCreatedEvent struct {
	OrderID  string      `json:"order_id"`
	VendorID string      `json:"vendor_id"`
	Items    []OrderItem `json:"items"`
}

type StockListener struct {
	consumer *broker.KafkaConsumer
	products product.UseCase
	logger   *zap.Logger
}

func New(consumer *broker.KafkaConsumer, products product.UseCase, log *zap.Logger) *StockListener {
	return &StockListener{
		consumer: consumer,
		products: products,
		logger:   log,
	}
}

// Run blocks reading order events until the context is cancelled.
// Malformed or failing messages are logged and skipped; the offset
// still advances so one bad event cannot wedge the partition.
func (l *StockListener) Run(ctx context.Context) error {
	for {
		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var event OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.logger.Warn("skipping malformed order event",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		l.handleOrder(ctx, &event)
	}
}

func (l *StockListener) handleOrder(ctx context.Context, event *OrderCreatedEvent) {
	for _, item := range event.Items {
		if item.Quantity <= 0 {
			continue
		}
		note := "order " + event.OrderID
		_, err := l.products.AdjustStock(ctx, event.VendorID, &dto.StockAdjustment{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Direction: dto.DirectionOut,
			Qty:       item.Quantity,
			Note:      note,
		})
		if err != nil {
			// Insufficient stock on an already-placed order is an upstream
			// inconsistency; surface it loudly but keep processing.
			if errors.Is(err, apperr.ErrInsufficientStock) {
				l.logger.Error("order exceeds available stock",
					zap.String("order_id", event.OrderID),
					zap.String("product_id", item.ProductID),
					zap.Int("quantity", item.Quantity),
				)
				continue
			}
			l.logger.Error("failed to deduct stock for order item",
				zap.String("order_id", event.OrderID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
