package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/product"
	"github.com/edgestore/storefront/internal/product/service"
)

// StockWorker drains post-checkout stock updates and writes them back to the
// catalog in batches. The inventory guard already holds the authoritative
// counts; this only persists units sold.
type StockWorker struct {
	catalog *service.ProductService
	queue   <-chan []product.StockUpdate
}

func NewStockWorker(
	catalog *service.ProductService,
	queue <-chan []product.StockUpdate,
) *StockWorker {
	return &StockWorker{catalog: catalog, queue: queue}
}

func (wrk StockWorker) StartWorker(c context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StockWorker StartWorker").
		Str(log.KeyProcess, "starting worker").
		Logger()

	tick := time.Tick(time.Millisecond * 300)
	batch := make([]product.StockUpdate, 0, 50)

	for {
		select {
		case <-c.Done():
			return
		case <-tick:
			if len(batch) == 0 {
				continue
			}
			requestId := uuid.NewString()
			lg := logger.With().Str(log.KeyRequestID, requestId).Logger()
			lg.Info().Msgf("start batch reduce stock updateCount=%d", len(batch))
			bc := lg.WithContext(c)
			bc = log.AttachRequestIDToContext(bc, requestId)
			err := wrk.catalog.ReduceStock(bc, batch)
			if err != nil {
				err = fmt.Errorf("failed batch reduce stock with error=%w", err)
				lg.Error().Err(err).Msg(err.Error())
				continue
			}
			lg.Info().Msg("batch reduce stock completed")
			batch = batch[:0]
		case updates, ok := <-wrk.queue:
			if !ok {
				return
			}
			logger.Info().Msgf("received stock updates updateCount=%d", len(updates))
			batch = append(batch, updates...)
		}
	}
}
