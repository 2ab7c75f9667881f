package worker

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/milhasdesk/points-admin/pkg/logger"
)

type WorkerHandler = func(workerIndex int, job interface{})

// WorkerManager fans jobs published with Enqueue out over a fixed pool
// of goroutines. The job channel is never closed here because it may be
// shared with other publishers; Exit signals the workers instead.
type WorkerManager struct {
	bufferSize     int
	jobChannel     chan interface{}
	numberOfWorker int
	sigTerm        chan os.Signal
	do             WorkerHandler
	waiter         *sync.WaitGroup
}

func NewWorkerManager(bufferSize, numberOfWorkers int, jobChannel chan interface{}) *WorkerManager {
	if jobChannel == nil {
		jobChannel = make(chan interface{}, bufferSize)
	}
	// Buffer size = numberOfWorkers so each worker can receive one
	// termination signal even if they arrive before workers start.
	var sigChan = make(chan os.Signal, numberOfWorkers)
	signal.Notify(sigChan, syscall.SIGTERM)

	return &WorkerManager{
		bufferSize:     bufferSize,
		numberOfWorker: numberOfWorkers,
		jobChannel:     jobChannel,
		sigTerm:        sigChan,
		waiter:         &sync.WaitGroup{},
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	if w.jobChannel == nil {
		return 0
	}
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) JobEvents() chan interface{} {
	return w.jobChannel
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue publishes a job onto the channel.
func (w *WorkerManager) Enqueue(val interface{}) {
	w.jobChannel <- val
}

// Start runs the pool and blocks until the workers terminate.
func (w *WorkerManager) Start() error {
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			for {
				select {
				case job := <-w.jobChannel:
					w.do(index, job)
				case <-w.sigTerm:
					w.waiter.Done()
					return
				}
			}
		}(i)
	}
	w.waiter.Wait()

	return errors.New("workers terminated")
}

// Exit signals every worker to stop after its current job.
func (w *WorkerManager) Exit() {
	logger.Info("worker manager shutting down")
	for i := 0; i < w.numberOfWorker; i++ {
		w.sigTerm <- syscall.SIGTERM
	}
}
