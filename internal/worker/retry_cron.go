package worker

// retry_cron.go
// Background goroutine that periodically repairs ATIVO products missing their
// tax record. Covers the gap the queue cannot: a crash between the catalog
// commit and the enqueue would otherwise leave products without tributos.

import (
	"context"
	"time"

	"ordersync/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 60 * time.Second
	retryBatchSize    = 500
)

// RetryCronConfig holds the dependencies of the repair goroutine.
type RetryCronConfig struct {
	ProdutoRepo repository.ProdutoRepository
	Tributos    TributoBootstrapper
}

// StartRetryCron launches a goroutine that ticks every minute, finds active
// products lacking a tax record, and bulk-creates zeroed ones. It respects
// the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				repairMissingTributos(ctx, cfg)
			}
		}
	}()
}

func repairMissingTributos(ctx context.Context, cfg RetryCronConfig) {
	ids, err := cfg.ProdutoRepo.IDsSemTributo(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query products without tributos")
		return
	}
	if len(ids) == 0 {
		return
	}

	if err := cfg.Tributos.CriarZerados(ctx, ids); err != nil {
		log.Error().Err(err).Int("produtos", len(ids)).Msg("retry_cron: bootstrap failed")
		return
	}
	log.Info().Int("produtos", len(ids)).Msg("retry_cron: tributos repaired")
}
