package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"verification-service/internal/repository"
)

// memOwnerStore mirrors the registry table in memory: a single mutex is
// the serialization point, uniqueness behaves like the real indexes.
type memOwnerStore struct {
	mu     sync.Mutex
	nextID int64
	owners []repository.Owner

	insertErr error
	findErr   error
}

func newMemOwnerStore() *memOwnerStore {
	return &memOwnerStore{}
}

func (s *memOwnerStore) Insert(ctx context.Context, owner *repository.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	for i := range s.owners {
		if s.owners[i].OwnerID == owner.OwnerID || s.owners[i].PlateKey == owner.PlateKey {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextID++
	owner.ID = s.nextID
	now := time.Now().UTC()
	owner.CreatedAt = now
	owner.UpdatedAt = now
	s.owners = append(s.owners, *owner)
	return nil
}

func (s *memOwnerStore) FindByOwnerID(ctx context.Context, ownerID string) (*repository.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.owners {
		if s.owners[i].OwnerID == ownerID {
			owner := s.owners[i]
			return &owner, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memOwnerStore) FindByPlateKey(ctx context.Context, plateKey string) (*repository.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.owners {
		if s.owners[i].PlateKey == plateKey {
			owner := s.owners[i]
			return &owner, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memOwnerStore) List(ctx context.Context) ([]repository.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.Owner, len(s.owners))
	copy(out, s.owners)
	return out, nil
}

func (s *memOwnerStore) DeleteByOwnerID(ctx context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.owners[:0]
	var removed int64
	for i := range s.owners {
		if s.owners[i].OwnerID == ownerID {
			removed++
			continue
		}
		kept = append(kept, s.owners[i])
	}
	s.owners = kept
	return removed, nil
}

func (s *memOwnerStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owners)
}

// memAttemptStore mirrors the append-only audit table: ids are assigned
// under the mutex, entries are never mutated after append.
type memAttemptStore struct {
	mu       sync.Mutex
	nextID   int64
	attempts []repository.VerificationAttempt

	appendErr error
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{}
}

func (s *memAttemptStore) Append(ctx context.Context, attempt *repository.VerificationAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.nextID++
	attempt.ID = s.nextID
	if attempt.ScanTimestamp.IsZero() {
		attempt.ScanTimestamp = time.Now().UTC()
	}
	s.attempts = append(s.attempts, *attempt)
	return nil
}

func (s *memAttemptStore) Find(ctx context.Context, scannedPlate *string, from, to *time.Time, limit, offset int) ([]repository.VerificationAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []repository.VerificationAttempt
	skipped := 0
	for i := len(s.attempts) - 1; i >= 0; i-- {
		attempt := s.attempts[i]
		if scannedPlate != nil && attempt.ScannedPlate != *scannedPlate {
			continue
		}
		if from != nil && attempt.ScanTimestamp.Before(*from) {
			continue
		}
		if to != nil && attempt.ScanTimestamp.After(*to) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, attempt)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memAttemptStore) Stats(ctx context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched int64
	for i := range s.attempts {
		if s.attempts[i].MatchFound {
			matched++
		}
	}
	return int64(len(s.attempts)), matched, nil
}

func (s *memAttemptStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

func (s *memAttemptStore) at(index int) repository.VerificationAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[index]
}
