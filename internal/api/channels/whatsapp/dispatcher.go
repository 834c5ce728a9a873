package whatsapp

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

const queueCapacity = 256

// Dispatcher decouples the webhook acknowledgment from message processing:
// the controller acks Meta with 200 and enqueues; a fixed pool of workers
// does the real work with its own error log. Processing failures are
// invisible to Meta, which keeps its redelivery mechanism quiet.
type Dispatcher struct {
	service *Service
	queue   chan *InboundMessage
	wg      sync.WaitGroup
	once    sync.Once
}

func NewDispatcher(service *Service, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		service: service,
		queue:   make(chan *InboundMessage, queueCapacity),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}

	utils.Zlog.Info("WhatsApp dispatcher started", zap.Int("workers", workers))
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		if err := d.service.Process(context.Background(), msg); err != nil {
			utils.Zlog.Error("Failed to process WhatsApp message",
				zap.String("from", msg.From),
				zap.String("message_id", msg.MessageID),
				zap.Error(err))
		}
	}
}

// Enqueue hands a message to the workers. A full queue drops the message
// with a log line rather than blocking the webhook handler.
func (d *Dispatcher) Enqueue(msg *InboundMessage) bool {
	select {
	case d.queue <- msg:
		return true
	default:
		utils.Zlog.Error("WhatsApp queue full, dropping message",
			zap.String("from", msg.From),
			zap.String("message_id", msg.MessageID))
		return false
	}
}

// Close drains the queue and waits for the workers to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
