package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// memStore is an in-memory Store. Slot transactions for the same slot are
// serialized the way the advisory lock serializes them in Postgres, and inserts
// only become visible when the callback succeeds.
type memStore struct {
	mu        sync.Mutex
	slotLocks map[domain.SlotKey]*sync.Mutex
	txLock    sync.Mutex

	templates  []*domain.ScheduleTemplate
	blackouts  []*domain.BlackoutDate
	periods    []*domain.ExclusionPeriod
	bookings   []*domain.Booking
	recipients map[domain.RecipientKind][]string
	nextID     int64

	// yield runs between the slot check and the insert to widen race windows.
	yield func()

	// committedElsewhere holds references that pass the existence check but
	// fail on insert, as if a create for another slot committed them first.
	committedElsewhere map[string]bool
}

func newMemStore(templates ...*domain.ScheduleTemplate) *memStore {
	return &memStore{
		slotLocks:  make(map[domain.SlotKey]*sync.Mutex),
		templates:  templates,
		recipients: make(map[domain.RecipientKind][]string),
	}
}

func (m *memStore) slotLock(key domain.SlotKey) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.slotLocks[key]
	if !ok {
		l = &sync.Mutex{}
		m.slotLocks[key] = l
	}
	return l
}

func (m *memStore) InSlotTx(ctx context.Context, d domain.Date, tod string, fn func(ctx context.Context, tx SlotTx) error) error {
	l := m.slotLock(domain.SlotKey{Date: d, Time: tod})
	l.Lock()
	defer l.Unlock()

	tx := &memSlotTx{store: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range tx.pending {
		m.nextID++
		b.ID = m.nextID
		b.CreatedAt = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
		m.bookings = append(m.bookings, b)
	}
	return nil
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LockedTx) error) error {
	m.txLock.Lock()
	defer m.txLock.Unlock()
	return fn(ctx, &memLockedTx{store: m})
}

func (m *memStore) find(pred func(b *domain.Booking) bool) *domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if pred(b) {
			cp := *b
			return &cp
		}
	}
	return nil
}

func (m *memStore) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if b := m.find(func(b *domain.Booking) bool { return b.ID == id }); b != nil {
		return b, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	if b := m.find(func(b *domain.Booking) bool { return b.Reference == reference }); b != nil {
		return b, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) GetConfirmedBookingsOn(ctx context.Context, d domain.Date) ([]*domain.Booking, error) {
	rows, _ := m.ListAllBookings(ctx, domain.BookingFilter{Status: domain.BookingStatusConfirmed, DateFrom: &d, DateTo: &d})
	sort.Slice(rows, func(i, j int) bool { return rows[i].TourTime < rows[j].TourTime })
	return rows, nil
}

func (m *memStore) UpdateBookingNotes(ctx context.Context, id int64, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			b.AdminNotes = notes
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) ListAllBookings(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []*domain.Booking{}
	for _, b := range m.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.DateFrom != nil && b.TourDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && b.TourDate.After(*f.DateTo) {
			continue
		}
		cp := *b
		rows = append(rows, &cp)
	}
	return rows, nil
}

func (m *memStore) ListBookings(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, int64, error) {
	rows, _ := m.ListAllBookings(ctx, f)
	total := int64(len(rows))
	start := (f.Page - 1) * f.PerPage
	if start > len(rows) {
		start = len(rows)
	}
	end := start + f.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func (m *memStore) GetBookingStatistics(ctx context.Context, from, to *domain.Date) (*domain.BookingStatistics, error) {
	rows, _ := m.ListAllBookings(ctx, domain.BookingFilter{DateFrom: from, DateTo: to})
	stats := &domain.BookingStatistics{}
	var people int64
	for _, b := range rows {
		stats.Total++
		switch b.Status {
		case domain.BookingStatusConfirmed:
			stats.Confirmed++
			people += int64(b.GroupSize())
		case domain.BookingStatusCancelled:
			stats.Cancelled++
		}
	}
	if stats.Confirmed > 0 {
		stats.AvgGroupSize = float64(people) / float64(stats.Confirmed)
	}
	return stats, nil
}

func (m *memStore) GetRecipientEmails(ctx context.Context, kind domain.RecipientKind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recipients[kind], nil
}

func (m *memStore) GetActiveScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	return m.templates, nil
}

func (m *memStore) GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error) {
	return m.blackouts, nil
}

func (m *memStore) GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error) {
	return m.periods, nil
}

func (m *memStore) confirmedCount(d domain.Date, tod string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.TourDate == d && b.TourTime == tod && b.Status == domain.BookingStatusConfirmed {
			n++
		}
	}
	return n
}

type memSlotTx struct {
	store   *memStore
	pending []*domain.Booking
}

func (tx *memSlotTx) GetActiveScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	return tx.store.GetActiveScheduleTemplates(ctx)
}

func (tx *memSlotTx) GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error) {
	return tx.store.GetAllBlackoutDates(ctx)
}

func (tx *memSlotTx) GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error) {
	return tx.store.GetAllExclusionPeriods(ctx)
}

func (tx *memSlotTx) CountConfirmedBookings(ctx context.Context, d domain.Date, tod string) (int, error) {
	n := tx.store.confirmedCount(d, tod)
	if tx.store.yield != nil {
		tx.store.yield()
	}
	return n, nil
}

func (tx *memSlotTx) BookingReferenceExists(ctx context.Context, reference string) (bool, error) {
	b := tx.store.find(func(b *domain.Booking) bool { return b.Reference == reference })
	return b != nil, nil
}

func (tx *memSlotTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	if tx.store.committedElsewhere[b.Reference] {
		return ErrReferenceTaken
	}
	tx.pending = append(tx.pending, b)
	return nil
}

type memLockedTx struct {
	store *memStore
}

func (tx *memLockedTx) GetBookingForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return tx.store.GetBookingByID(ctx, id)
}

func (tx *memLockedTx) CancelBooking(ctx context.Context, id int64, at time.Time) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, b := range tx.store.bookings {
		if b.ID == id {
			b.Status = domain.BookingStatusCancelled
			b.CancelledAt = &at
			return nil
		}
	}
	return ErrNotFound
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []domain.MailMessage
	err  error
}

func (n *recordingNotifier) Publish(ctx context.Context, msg domain.MailMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *recordingNotifier) types() []domain.MailType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.MailType, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.Type)
	}
	return out
}

var errPublish = errors.New("broker unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store Store, notifier Notifier, now time.Time, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return now }), WithLogger(discardLogger())}, opts...)
	return NewService(store, notifier, validator.New(validator.WithRequiredStructEnabled()), opts...)
}

func recurring(id int64, wd time.Weekday, tod string, max int32) *domain.ScheduleTemplate {
	dow := int32(wd)
	return &domain.ScheduleTemplate{ID: id, Kind: domain.TemplateKindRecurring, DayOfWeek: &dow, TimeOfDay: tod, MaxGroups: max, IsActive: true}
}

func testPolicy() domain.BookingPolicy {
	return domain.BookingPolicy{
		Enabled:         true,
		MinGroupSize:    1,
		MaxGroupSize:    6,
		AdvanceDays:     60,
		ReferencePrefix: "CVS",
		Location:        time.UTC,
	}
}

func intPtr(v int) *int { return &v }
