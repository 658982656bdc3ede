package cloudmetrics

import (
	"context"
	"time"

	"github.com/smallbiznis/spendlens/internal/config"
	obsmetrics "github.com/smallbiznis/spendlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("cloud.metrics",
	fx.Provide(NewPusher),
	fx.Provide(NewRecorder),
	fx.Invoke(registerRecorder),
	fx.Invoke(startWorker),
)

func registerRecorder(r *Recorder, httpMetrics *obsmetrics.HTTPMetrics) error {
	return httpMetrics.Register(r.Collectors()...)
}

type workerParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Config      config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Pusher      Pusher
	Recorder    *Recorder
	HTTPMetrics *obsmetrics.HTTPMetrics
}

func startWorker(p workerParams) {
	if p.Pusher == nil {
		return
	}
	log := p.Log.Named("cloudmetrics")
	interval := p.Config.Push.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	pushOnce := func() {
		pushCtx, pushCancel := context.WithTimeout(ctx, defaultPushTimeout*2)
		defer pushCancel()
		if err := p.Recorder.Refresh(pushCtx, p.DB); err != nil {
			log.Warn("refresh dataset gauges failed", zap.Error(err))
		}
		if err := p.Pusher.Push(pushCtx, p.HTTPMetrics.Gatherer()); err != nil {
			log.Warn("metric push failed", zap.Error(err))
		}
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting metric push worker", zap.Duration("interval", interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				pushOnce()
				for {
					select {
					case <-ticker.C:
						pushOnce()
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
