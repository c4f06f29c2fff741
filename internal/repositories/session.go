package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type SessionRepository interface {
	Create() (string, error)
	Get(id string) (*models.Session, bool)
	RecordProfile(id string, profile *models.CandidateProfile)
	AppendAnswer(id string, evaluation *models.AnswerEvaluation)
	Count() int
}

const maxCreateAttempts = 5

type sessionEntry struct {
	mu      sync.Mutex
	session models.Session
}

type sessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions in memory. Entries expire ttl after
// their last write; the janitor sweeps every cleanupInterval.
func NewSessionRepository(ttl, cleanupInterval time.Duration) SessionRepository {
	return &sessionRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
}

// Create implements SessionRepository.
func (r *sessionRepository) Create() (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id := newSessionID(r.cache.ItemCount() + 1)
		entry := &sessionEntry{
			session: models.Session{
				ID:        id,
				Answers:   []models.AnswerEvaluation{},
				CreatedAt: time.Now(),
			},
		}

		// Add refuses existing keys, so a suffix collision just retries.
		if err := r.cache.Add(id, entry, cache.DefaultExpiration); err != nil {
			lastErr = err
			continue
		}
		return id, nil
	}

	return "", fmt.Errorf("failed to create session: %w", lastErr)
}

// Get implements SessionRepository.
func (r *sessionRepository) Get(id string) (*models.Session, bool) {
	entry, ok := r.entry(id)
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Clone(), true
}

// RecordProfile implements SessionRepository.
func (r *sessionRepository) RecordProfile(id string, profile *models.CandidateProfile) {
	entry, ok := r.entry(id)
	if !ok || profile == nil {
		return
	}

	p := *profile
	entry.mu.Lock()
	entry.session.CandidateInfo = &p
	entry.mu.Unlock()

	r.touch(id, entry)
}

// AppendAnswer implements SessionRepository.
func (r *sessionRepository) AppendAnswer(id string, evaluation *models.AnswerEvaluation) {
	entry, ok := r.entry(id)
	if !ok || evaluation == nil {
		return
	}

	entry.mu.Lock()
	entry.session.Answers = append(entry.session.Answers, *evaluation)
	entry.mu.Unlock()

	r.touch(id, entry)
}

// Count implements SessionRepository.
func (r *sessionRepository) Count() int {
	return r.cache.ItemCount()
}

func (r *sessionRepository) entry(id string) (*sessionEntry, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	entry, ok := x.(*sessionEntry)
	return entry, ok
}

// touch refreshes the expiry without resurrecting an entry that expired
// between the read and the write.
func (r *sessionRepository) touch(id string, entry *sessionEntry) {
	_ = r.cache.Replace(id, entry, cache.DefaultExpiration)
}

func newSessionID(n int) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("session_%d_%s", n, suffix)
}
