package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// CleanupService periodically expires overdue subscriptions.
type CleanupService struct {
	subs     *SubscriptionService
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService(subs *SubscriptionService, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	cleanupService = &CleanupService{subs: subs, interval: interval}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start runs one sweep right away and then one per interval. Calling it
// while already running does nothing.
func (s *CleanupService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	log.Printf("🧹 Subscription cleanup started (every %s)", s.interval)
}

// Stop halts the worker and waits for a sweep in progress to finish.
func (s *CleanupService) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	log.Println("🧹 Subscription cleanup stopped")
}

func (s *CleanupService) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("❌ Subscription cleanup failed: %v", err)
	}
}

// RunOnce expires overdue subscriptions and returns how many users lost premium.
func (s *CleanupService) RunOnce(ctx context.Context) (int, error) {
	n, err := s.subs.ExpireDue(ctx)
	if err != nil {
		return n, err
	}
	if n > 0 {
		log.Printf("✅ Expired premium access for %d users", n)
	}
	return n, nil
}
