package worker

import (
	"log"
	"time"

	"github.com/tradejournal/internal/repository"
)

// KeyTouchWorker batches the last-used timestamp touches produced by
// every authenticated ingestion request. Touches are last-write-wins and
// advisory, so the worker collects them in memory and flushes
// periodically; a failed flush is logged and dropped, never retried.
type KeyTouchWorker struct {
	keyRepo  *repository.APIKeyRepository
	interval time.Duration
	touches  chan uint
	stopChan chan struct{}
	done     chan struct{}
}

// NewKeyTouchWorker creates a new KeyTouchWorker
func NewKeyTouchWorker(keyRepo *repository.APIKeyRepository, interval time.Duration) *KeyTouchWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &KeyTouchWorker{
		keyRepo:  keyRepo,
		interval: interval,
		touches:  make(chan uint, 1024),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Touch records that a key was just used. Never blocks: if the buffer is
// full the touch is dropped, which only costs timestamp precision.
func (w *KeyTouchWorker) Touch(keyID uint) {
	select {
	case w.touches <- keyID:
	default:
	}
}

// Start begins the flush loop
func (w *KeyTouchWorker) Start() {
	log.Printf("Key touch worker started with interval: %v", w.interval)
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	pending := make(map[uint]time.Time)

	for {
		select {
		case keyID := <-w.touches:
			pending[keyID] = time.Now().UTC()
		case <-ticker.C:
			w.flush(pending)
		case <-w.stopChan:
			w.drain(pending)
			w.flush(pending)
			log.Println("Key touch worker stopped")
			return
		}
	}
}

// Stop stops the flush loop after one final flush
func (w *KeyTouchWorker) Stop() {
	close(w.stopChan)
	<-w.done
}

func (w *KeyTouchWorker) drain(pending map[uint]time.Time) {
	for {
		select {
		case keyID := <-w.touches:
			pending[keyID] = time.Now().UTC()
		default:
			return
		}
	}
}

func (w *KeyTouchWorker) flush(pending map[uint]time.Time) {
	for keyID, at := range pending {
		if err := w.keyRepo.TouchLastUsed(keyID, at); err != nil {
			log.Printf("Key touch worker: failed to update key %d: %v", keyID, err)
		}
		delete(pending, keyID)
	}
}
