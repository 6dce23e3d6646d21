package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quickseats/booking/internal/model"
)

// MemoryStore is an in-memory Store.  It backs the test suite and is
// handy for local development without MySQL.  A single mutex makes
// every operation linearizable; WithTx holds the mutex for the whole
// transactional function, which is what gives multi-step operations
// their atomicity against concurrent callers.
//
// Mutations inside WithTx are applied in place, so a transactional
// function must do all its checks before its first write; the
// Coordinator's operations are ordered that way.
type MemoryStore struct {
	mu       sync.Mutex
	shows    map[uint64]model.Show
	seats    map[uint64]map[uint64]*SeatState // showID -> seatID -> state
	bookings []model.Booking
	nextID   uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shows: make(map[uint64]model.Show),
		seats: make(map[uint64]map[uint64]*SeatState),
	}
}

// AddShow seeds a show and one AVAILABLE ledger row per seat, the same
// shape the SQL store gets when a show is created.
func (s *MemoryStore) AddShow(show model.Show, seatIDs []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows[show.ID] = show
	rows := make(map[uint64]*SeatState, len(seatIDs))
	for _, id := range seatIDs {
		rows[id] = &SeatState{ShowID: show.ID, SeatID: id, Status: StatusAvailable}
	}
	s.seats[show.ID] = rows
}

type memTxKey struct{}

// WithTx runs fn with the store lock held.  Store methods called with
// the context fn receives skip re-locking, so the whole function is
// one critical section.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, struct{}{}))
}

// lock acquires the mutex unless the context carries the WithTx marker.
// It returns the matching unlock.
func (s *MemoryStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ShowByID implements Store.
func (s *MemoryStore) ShowByID(ctx context.Context, showID uint64) (*model.Show, error) {
	defer s.lock(ctx)()
	show, ok := s.shows[showID]
	if !ok {
		return nil, ErrShowNotFound
	}
	return &show, nil
}

// SeatStates implements Ledger.
func (s *MemoryStore) SeatStates(ctx context.Context, showID uint64) ([]SeatState, error) {
	defer s.lock(ctx)()
	rows, ok := s.seats[showID]
	if !ok {
		return nil, ErrShowNotFound
	}
	out := make([]SeatState, 0, len(rows))
	for _, st := range rows {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatID < out[j].SeatID })
	return out, nil
}

// TryHold implements Ledger.
func (s *MemoryStore) TryHold(ctx context.Context, showID uint64, seatIDs []uint64, token string, expiresAt time.Time) error {
	defer s.lock(ctx)()
	rows, ok := s.seats[showID]
	if !ok {
		return ErrShowNotFound
	}
	now := time.Now().UTC()

	var conflicts []uint64
	for _, id := range seatIDs {
		st, ok := rows[id]
		if !ok {
			return &ValidationError{Reason: "seat not part of this show"}
		}
		switch {
		case st.Status == StatusAvailable:
		case st.Expired(now): // lapsed hold counts as available
		default:
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{SeatIDs: conflicts}
	}

	exp := expiresAt
	for _, id := range seatIDs {
		st := rows[id]
		st.Status = StatusHeld
		st.HoldToken = token
		st.HoldExpiresAt = &exp
	}
	return nil
}

// Confirm implements Ledger.  Conflicts (seat booked or held by someone
// else) take precedence over expiry in the error report, since a
// conflicted seat cannot be recovered by re-holding immediately.
func (s *MemoryStore) Confirm(ctx context.Context, showID uint64, seatIDs []uint64, token string, now time.Time) error {
	defer s.lock(ctx)()
	rows, ok := s.seats[showID]
	if !ok {
		return ErrShowNotFound
	}

	var conflicts []uint64
	expired := false
	for _, id := range seatIDs {
		st, ok := rows[id]
		if !ok {
			return &ValidationError{Reason: "seat not part of this show"}
		}
		switch {
		case st.Status == StatusHeld && st.HoldToken == token && !st.Expired(now):
		case st.Status == StatusHeld && st.HoldToken == token:
			expired = true
		case st.Status == StatusAvailable:
			// the hold lapsed and was already swept
			expired = true
		default:
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{SeatIDs: conflicts}
	}
	if expired {
		return ErrHoldExpired
	}

	for _, id := range seatIDs {
		st := rows[id]
		st.Status = StatusBooked
		st.HoldToken = ""
		st.HoldExpiresAt = nil
	}
	return nil
}

// Release implements Ledger.
func (s *MemoryStore) Release(ctx context.Context, showID uint64, seatIDs []uint64, token string) (int64, error) {
	defer s.lock(ctx)()
	rows, ok := s.seats[showID]
	if !ok {
		return 0, ErrShowNotFound
	}
	var released int64
	for _, id := range seatIDs {
		st, ok := rows[id]
		if !ok {
			continue
		}
		if st.Status == StatusHeld && st.HoldToken == token {
			st.Status = StatusAvailable
			st.HoldToken = ""
			st.HoldExpiresAt = nil
			released++
		}
	}
	return released, nil
}

// ReleaseExpired implements Ledger.
func (s *MemoryStore) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	defer s.lock(ctx)()
	var released int64
	for _, rows := range s.seats {
		for _, st := range rows {
			if st.Expired(now) {
				st.Status = StatusAvailable
				st.HoldToken = ""
				st.HoldExpiresAt = nil
				released++
			}
		}
	}
	return released, nil
}

// CreateBooking implements BookingStore.
func (s *MemoryStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	defer s.lock(ctx)()
	s.nextID++
	b.ID = s.nextID
	cp := *b
	cp.SeatIDs = append([]uint64(nil), b.SeatIDs...)
	s.bookings = append(s.bookings, cp)
	return nil
}

// BookingsForUser implements BookingStore, newest first.
func (s *MemoryStore) BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	defer s.lock(ctx)()
	var out []model.Booking
	for i := len(s.bookings) - 1; i >= 0; i-- {
		if s.bookings[i].UserID == userID {
			out = append(out, s.bookings[i])
		}
	}
	return out, nil
}

// BookingByID implements BookingStore.
func (s *MemoryStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	defer s.lock(ctx)()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}
