package memory

import (
	"context"
	"sync"

	"convoke/internal/domain"
)

type attendanceKey struct {
	eventID string
	userID  string
}

type attendanceRepository struct {
	mu      sync.RWMutex
	records map[attendanceKey]*domain.AttendanceRecord
	order   []attendanceKey
}

// NewAttendanceRepository returns an empty in-memory AttendanceRepository.
func NewAttendanceRepository() domain.AttendanceRepository {
	return &attendanceRepository{records: make(map[attendanceKey]*domain.AttendanceRecord)}
}

func (r *attendanceRepository) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := attendanceKey{eventID: rec.EventID, userID: rec.UserID}
	if _, ok := r.records[key]; ok {
		return domain.NewError(domain.KindConflict, "Already confirmed")
	}
	stored := *rec
	r.records[key] = &stored
	r.order = append(r.order, key)
	return nil
}

func (r *attendanceRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[attendanceKey{eventID: eventID, userID: userID}]
	return ok, nil
}

func (r *attendanceRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for key := range r.records {
		if key.eventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *attendanceRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.AttendanceRecord{}
	for _, key := range r.order {
		if key.userID == userID {
			c := *r.records[key]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *attendanceRepository) ListUserIDsByEventID(ctx context.Context, eventID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for _, key := range r.order {
		if key.eventID == eventID {
			out = append(out, key.userID)
		}
	}
	return out, nil
}
