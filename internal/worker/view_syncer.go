package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-participation/internal/pkg/logger"
)

// ViewSource は閲覧カウントの取り出し元を表すインターフェース
type ViewSource interface {
	Flush(ctx context.Context) (map[string]int64, error)
}

// ViewSink は閲覧カウントの書き込み先を表すインターフェース
type ViewSink interface {
	AddViews(ctx context.Context, deltas map[string]int64) error
}

// ViewSyncer はRedis上の閲覧カウントを定期的にDBへ反映するワーカー
type ViewSyncer struct {
	source   ViewSource
	sink     ViewSink
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewViewSyncer は新しいViewSyncerを作成
func NewViewSyncer(source ViewSource, sink ViewSink, interval time.Duration) *ViewSyncer {
	return &ViewSyncer{
		source:   source,
		sink:     sink,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始
func (s *ViewSyncer) Start(ctx context.Context) {
	logger.Info("閲覧数シンクワーカー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("閲覧数シンクワーカー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			// 停止前に残りを反映する
			s.sync(ctx)
			logger.Info("閲覧数シンクワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sync(ctx)
		}
	}
}

// Stop はワーカーを停止
func (s *ViewSyncer) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sync は集計済みの閲覧数をDBへ反映
func (s *ViewSyncer) sync(ctx context.Context) {
	log := logger.Get()
	log.Debug("閲覧数の同期開始")

	deltas, err := s.source.Flush(ctx)
	if err != nil {
		log.Error("閲覧カウントの取り出しに失敗", zap.Error(err))
		return
	}
	if len(deltas) == 0 {
		log.Debug("反映する閲覧カウントなし")
		return
	}

	if err := s.sink.AddViews(ctx, deltas); err != nil {
		log.Error("閲覧数のDB反映に失敗", zap.Error(err), zap.Int("events", len(deltas)))
		return
	}
	log.Info("閲覧数を反映", zap.Int("events", len(deltas)))
}
