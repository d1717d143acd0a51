package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/models"
	"wordvault-backend/internal/repository"
	"wordvault-backend/internal/websocket"
)

// SnapshotRefresher periodically re-fetches the remote document so the
// offline snapshot stays warm, and tells connected clients when another
// writer changed the collection.
type SnapshotRefresher struct {
	docs     *repository.DocumentRepo
	cache    *cache.Store
	hub      *websocket.Hub
	interval time.Duration
	stopChan chan struct{}
}

func NewSnapshotRefresher(docs *repository.DocumentRepo, cacheStore *cache.Store, hub *websocket.Hub, interval time.Duration) *SnapshotRefresher {
	return &SnapshotRefresher{
		docs:     docs,
		cache:    cacheStore,
		hub:      hub,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *SnapshotRefresher) Start() {
	if s.interval <= 0 {
		return
	}
	go s.loop()
	log.Printf("Snapshot refresher started (every %s)", s.interval)
}

func (s *SnapshotRefresher) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *SnapshotRefresher) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}

func (s *SnapshotRefresher) refresh() {
	if !s.cache.Credentials().Configured() {
		return
	}

	before := fingerprint(s.cache.Snapshot())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	words := s.docs.FetchAll(ctx)
	cancel()

	if fingerprint(words) != before {
		s.hub.Broadcast(models.WSMessage{
			Type:    "collection_changed",
			Payload: models.CollectionChangedEvent{Action: "refreshed"},
		})
	}
}

// fingerprint hashes the serialized collection so any remote change is
// noticed, including swaps that keep the length and newest timestamp.
func fingerprint(words []models.Word) string {
	if words == nil {
		words = []models.Word{}
	}
	data, err := json.Marshal(words)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
