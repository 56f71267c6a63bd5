package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/repositories"
)

// Worker runs evaluation sessions concurrently. Each session is a single
// unit of work; its stages run sequentially inside one worker goroutine.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueSession(sessionID uuid.UUID)
}

type worker struct {
	sessions    repositories.SessionRepository
	manager     SessionManager
	jobQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(
	sessions repositories.SessionRepository,
	manager SessionManager,
	concurrency int,
) Worker {
	return &worker{
		sessions:    sessions,
		manager:     manager,
		jobQueue:    make(chan uuid.UUID, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processSessions(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingSessions(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueSession implements Worker.
func (w *worker) EnqueueSession(sessionID uuid.UUID) {
	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Session %s enqueued\n", sessionID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue session %s\n", sessionID)
	}
}

func (w *worker) processSessions(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing session %s\n", workerID, sessionID)
			if err := w.manager.RunSession(ctx, sessionID); err != nil {
				log.Printf("❌ Worker #%d: session %s ended with error: %v\n", workerID, sessionID, err)
			}
		}
	}
}

// pollPendingSessions re-enqueues sessions that were accepted but never
// picked up, e.g. after a restart.
func (w *worker) pollPendingSessions(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.sessions.FindPending(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending sessions: %v\n", err)
				continue
			}

			for _, session := range pending {
				w.EnqueueSession(session.ID)
			}
		}
	}
}
