package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/milhasdesk/points-admin/internal/config"
	"github.com/milhasdesk/points-admin/internal/queue"
	"github.com/milhasdesk/points-admin/pkg/logger"
	"github.com/milhasdesk/points-admin/pkg/redis"
	"github.com/milhasdesk/points-admin/pkg/worker"
)

const StatsInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// Processor handles one consumed queue message.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

// ProcessorService drives the release-event consumers: stream readers
// feed a worker pool which runs the registered processor.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	worker    *worker.WorkerManager
}

type job struct {
	ctx context.Context
	msg *queue.Message
	err chan error
}

func NewProcessorService(redisAdapter redis.RedisAdapter) (*ProcessorService, error) {
	ctx, cancel := context.WithCancel(context.Background())
	service := &ProcessorService{
		adapter: redisAdapter,
		queues:  make([]*queue.Queue, 0),
		metrics: NewServiceMetrics(),
		ctx:     ctx,
		cancel:  cancel,
		worker:  worker.NewWorkerManager(10_000, 50, nil),
	}
	return service, nil
}

func (s *ProcessorService) RegisterProcessor(processor Processor) {
	s.processor = processor
	logger.Info("registered processor", "type", processor.GetType())
}

func (s *ProcessorService) Start(consumers int) error {
	if s.processor == nil {
		return fmt.Errorf("no processor registered")
	}

	logger.Info("starting processor service...")

	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("worker manager stopped", "error", err)
		}
	}()

	for i := 0; i < consumers; i++ {
		queueConfig := queue.QueueConfig{
			Name:              config.Get().ReleaseStreamName,
			ConsumerGroup:     config.Get().ReleaseConsumerGroup,
			ConsumerName:      fmt.Sprintf("%s-instance-%d", config.Get().ReleaseConsumerName, i),
			MaxRetries:        config.Get().ReleaseMaxRetries,
			VisibilityTimeout: config.Get().ReleaseVisibilityWindow,
			PollInterval:      config.Get().ReleasePollInterval,
			BatchSize:         config.Get().ReleaseBatchSize,
			MaxLen:            config.Get().ReleaseStreamMaxLen,
			EnableDLQ:         config.Get().ReleaseEnableDLQ,
		}

		q, err := queue.NewQueue(s.adapter, queueConfig)
		if err != nil {
			return fmt.Errorf("failed to create queue %d: %w", i, err)
		}

		if err := q.Consume(s.enqueueMessage); err != nil {
			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}

		s.queues = append(s.queues, q)
	}

	s.wg.Add(1)
	go s.statsReporter()

	logger.Info("processor service started", "consumers", len(s.queues))
	return nil
}

// enqueueMessage bridges the queue's handler into the worker pool,
// blocking until a worker reports the outcome so the queue can decide
// whether to ack.
func (s *ProcessorService) enqueueMessage(ctx context.Context, msg *queue.Message) error {
	j := &job{ctx: ctx, msg: msg, err: make(chan error, 1)}
	s.worker.Enqueue(j)

	select {
	case err := <-j.err:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, v interface{}) {
	j, ok := v.(*job)
	if !ok {
		logger.Error("unexpected job type", "worker", workerIndex)
		return
	}

	start := time.Now()
	err := s.processor.Process(j.ctx, j.msg)
	if err != nil {
		s.metrics.RecordFailure()
	} else {
		s.metrics.RecordSuccess(time.Since(start))
	}
	j.err <- err
}

func (s *ProcessorService) statsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			stats := s.metrics.GetStats()
			logger.Info("processor stats",
				"total_processed", stats["total_processed"],
				"total_failed", stats["total_failed"],
				"rate_per_second", stats["rate_per_second"],
				"avg_duration_ms", stats["avg_duration_ms"],
			)
		}
	}
}

func (s *ProcessorService) Stop() {
	logger.Info("stopping processor service...")

	for _, q := range s.queues {
		if err := q.Stop(ShutdownTimeout); err != nil {
			logger.Warn("queue stop failed", "error", err)
		}
	}

	s.cancel()
	s.worker.Exit()
	s.wg.Wait()

	logger.Info("processor service stopped")
}
