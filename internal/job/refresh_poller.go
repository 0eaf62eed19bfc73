package job

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"aironix-backend/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type NewsRefresher interface {
	RefreshNews(ctx context.Context) error
}

type PredictionRefresher interface {
	RefreshPrediction(ctx context.Context, model domain.PredictionModel) error
}

// RefreshPoller runs one background goroutine per ingestion source: the news
// feed and each tracked prediction model. Every source ticks immediately on
// start and then on its own cadence. A tick arriving while the same source
// is still running is dropped, not queued, so at most one ingestion run per
// source is ever in flight.
type RefreshPoller struct {
	tracer             trace.Tracer
	news               NewsRefresher
	predictions        PredictionRefresher
	newsInterval       time.Duration
	predictionInterval time.Duration
	busy               map[string]*atomic.Bool
}

func NewRefreshPoller(
	tracer trace.Tracer,
	news NewsRefresher,
	predictions PredictionRefresher,
	newsPollSecs, predictionPollSecs int,
) *RefreshPoller {
	if newsPollSecs <= 0 {
		newsPollSecs = 3600
	}
	if predictionPollSecs <= 0 {
		predictionPollSecs = 300
	}

	busy := map[string]*atomic.Bool{"news": {}}
	for _, model := range domain.PredictionModels {
		busy[sourceKey(model)] = &atomic.Bool{}
	}

	return &RefreshPoller{
		tracer:             tracer,
		news:               news,
		predictions:        predictions,
		newsInterval:       time.Duration(newsPollSecs) * time.Second,
		predictionInterval: time.Duration(predictionPollSecs) * time.Second,
		busy:               busy,
	}
}

// Start launches the per-source polling goroutines. Blocks until ctx is
// cancelled; in-flight runs are simply abandoned with the process.
func (p *RefreshPoller) Start(ctx context.Context) {
	log.Println("Refresh poller starting...")

	go p.pollLoop(ctx, "news", p.newsInterval, p.RunNewsTick)

	for _, model := range domain.PredictionModels {
		model := model
		go p.pollLoop(ctx, sourceKey(model), p.predictionInterval, func(ctx context.Context) bool {
			return p.RunPredictionTick(ctx, model)
		})
	}

	<-ctx.Done()
	log.Println("Refresh poller stopped")
}

func (p *RefreshPoller) pollLoop(ctx context.Context, name string, interval time.Duration, tick func(context.Context) bool) {
	// Run immediately on start
	tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// RunNewsTick executes one news ingestion cycle. Reports false when the tick
// was dropped because the previous news run is still in flight.
func (p *RefreshPoller) RunNewsTick(ctx context.Context) bool {
	return p.runGuarded(ctx, "news", p.news.RefreshNews)
}

// RunPredictionTick executes one ingestion cycle for a single model source.
func (p *RefreshPoller) RunPredictionTick(ctx context.Context, model domain.PredictionModel) bool {
	return p.runGuarded(ctx, sourceKey(model), func(ctx context.Context) error {
		return p.predictions.RefreshPrediction(ctx, model)
	})
}

/// runGuarded is the per-source busy flag: a non-blocking mutex. An overlapping
// tick is absorbed rather than queued, which keeps a slow upstream from
// piling up catch-up fetches. Cycle errors are logged, never propagated;
// the source just waits for its next tick.
func (p *RefreshPoller) runGuarded(ctx context.Context, source string, fn func(context.Context) error) bool {
	flag := p.busy[source]
	if !flag.CompareAndSwap(false, true) {
		log.Printf("poller %s tick dropped: previous run still in flight", source)
		return false
	}
	defer flag.Store(false)

	_, span := p.tracer.Start(ctx, "refresh-poller.run")
	defer span.End()

	if err := fn(ctx); err != nil {
		log.Printf("poller %s cycle error: %v", source, err)
	}
	return true
}

func sourceKey(model domain.PredictionModel) string {
	return fmt.Sprintf("prediction-%s-m%d", model.StockSymbol, model.ModelID)
}
