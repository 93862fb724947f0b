package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"confbooking/internal/domain"
	"confbooking/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a controllable time source for the engine.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// notification is one recorded Notifier call.
type notification struct {
	event     string
	userID    string
	conf      string
	bookingID string
	reason    string
	deadline  time.Time
}

// recordingNotifier implements domain.Notifier and records every call.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) record(c notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
}

func (n *recordingNotifier) SlotAvailable(ctx context.Context, userID, conf, bookingID string, deadline time.Time) error {
	n.record(notification{event: "slot_available", userID: userID, conf: conf, bookingID: bookingID, deadline: deadline})
	return nil
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, userID, conf, bookingID string) error {
	n.record(notification{event: "confirmed", userID: userID, conf: conf, bookingID: bookingID})
	return nil
}

func (n *recordingNotifier) BookingWaitlisted(ctx context.Context, userID, conf, bookingID string) error {
	n.record(notification{event: "waitlisted", userID: userID, conf: conf, bookingID: bookingID})
	return nil
}

func (n *recordingNotifier) BookingCanceled(ctx context.Context, userID, conf, bookingID, reason string) error {
	n.record(notification{event: "canceled", userID: userID, conf: conf, bookingID: bookingID, reason: reason})
	return nil
}

func (n *recordingNotifier) byEvent(event string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification
	for _, c := range n.calls {
		if c.event == event {
			out = append(out, c)
		}
	}
	return out
}

// engineFixture bundles the engine with its backing stores and collaborators.
type engineFixture struct {
	svc       domain.BookingService
	registry  domain.RegistryService
	confs     *memory.ConferenceRepo
	users     *memory.UserRepo
	bookings  *memory.BookingRepo
	waitlists *memory.WaitlistRepo
	notifier  *recordingNotifier
	clock     *testClock
}

// testBase is the fixture's initial wall-clock instant; conferences in these
// tests are scheduled relative to it.
var testBase = time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &engineFixture{
		confs:     memory.NewConferenceRepo(),
		users:     memory.NewUserRepo(),
		bookings:  memory.NewBookingRepo(),
		waitlists: memory.NewWaitlistRepo(),
		notifier:  &recordingNotifier{},
		clock:     &testClock{t: testBase},
	}
	f.svc = NewBookingService(f.confs, f.users, f.bookings, f.waitlists, f.notifier, logger, time.Hour)
	f.svc.(*bookingService).now = f.clock.Now
	f.registry = NewRegistryService(f.confs, f.users, logger)
	return f
}

// addConference registers a conference starting startIn from the fixture base
// with a 2 hour duration.
func (f *engineFixture) addConference(t *testing.T, name string, startIn time.Duration, slots int) {
	t.Helper()
	start := testBase.Add(startIn)
	_, err := f.registry.RegisterConference(context.Background(), name, "Berlin", nil, start, start.Add(2*time.Hour), slots)
	require.NoError(t, err)
}

func (f *engineFixture) addUser(t *testing.T, id string) {
	t.Helper()
	_, err := f.registry.RegisterUser(context.Background(), id, nil)
	require.NoError(t, err)
}

// assertInvariants checks the conference slot equation and that the waitlist
// equals, as a set, the Waitlisted bookings referencing the conference.
func (f *engineFixture) assertInvariants(t *testing.T, confName string) {
	t.Helper()
	ctx := context.Background()
	conf, err := f.confs.GetByName(ctx, confName)
	require.NoError(t, err)

	all, err := f.bookings.List(ctx)
	require.NoError(t, err)
	confirmed := 0
	var waitlisted []string
	for _, b := range all {
		if b.ConferenceName != confName {
			continue
		}
		switch b.Status {
		case domain.StatusConfirmed:
			confirmed++
		case domain.StatusWaitlisted:
			waitlisted = append(waitlisted, b.ID)
		}
	}
	assert.Equal(t, conf.TotalSlots, conf.AvailableSlots+confirmed,
		"availableSlots + confirmed bookings must equal totalSlots for %q", confName)

	queued, err := f.waitlists.List(ctx, confName)
	require.NoError(t, err)
	assert.ElementsMatch(t, waitlisted, queued,
		"waitlist for %q must equal the set of its waitlisted bookings", confName)
}

func TestBookConference_ConfirmedThenWaitlisted(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	aliceID, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	status, err := f.svc.GetBookingStatus(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, status)

	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)
	status, err = f.svc.GetBookingStatus(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitlisted, status)

	queued, err := f.waitlists.List(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, []string{bobID}, queued)

	f.assertInvariants(t, "GopherCon")
}

func TestBookConference_Guards(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")

	_, err := f.svc.BookConference(ctx, "nobody", "GopherCon")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "unknown user")

	_, err = f.svc.BookConference(ctx, "alice", "NoSuchConf")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "unknown conference")

	first, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)

	_, err = f.svc.BookConference(ctx, "alice", "GopherCon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateBooking))
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, first, derr.BookingID, "error identifies the existing booking")

	f.clock.Advance(3 * time.Hour) // past the 10:00 start
	f.addUser(t, "bob")
	_, err = f.svc.BookConference(ctx, "bob", "GopherCon")
	assert.True(t, errors.Is(err, domain.ErrAlreadyStarted))
}

func TestBookConference_ConflictingConfirmedBooking(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	// Overlapping 2h windows offset by 1h, each with one slot.
	f.addConference(t, "conf-1", 2*time.Hour, 1)
	f.addConference(t, "conf-2", 3*time.Hour, 1)
	f.addUser(t, "alice")

	confirmedID, err := f.svc.BookConference(ctx, "alice", "conf-1")
	require.NoError(t, err)

	_, err = f.svc.BookConference(ctx, "alice", "conf-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, confirmedID, derr.BookingID)
}

// Scenario: 1-slot conference, alice confirmed, bob waitlisted. Canceling
// alice's booking frees the slot and stamps a deadline on bob's booking, but
// bob stays Waitlisted until he explicitly confirms.
func TestCancelBooking_PromotesWaitlistHead(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	aliceID, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelBooking(ctx, aliceID))

	conf, err := f.confs.GetByName(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, 1, conf.AvailableSlots, "slot released")

	bob, err := f.svc.GetBooking(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitlisted, bob.Status, "promotion requires explicit confirm")
	assert.Equal(t, f.clock.Now().Add(time.Hour), bob.ConfirmationDeadline)

	promoted := f.notifier.byEvent("slot_available")
	require.Len(t, promoted, 1)
	assert.Equal(t, "bob", promoted[0].userID)

	confirmed, err := f.svc.ConfirmWaitlistedBooking(ctx, bobID)
	require.NoError(t, err)
	assert.True(t, confirmed)

	conf, err = f.confs.GetByName(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, 0, conf.AvailableSlots, "slot consumed by the confirmation")
	f.assertInvariants(t, "GopherCon")
}

func TestCancelBooking_WaitlistedRemovedPreservingOrder(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	for _, u := range []string{"alice", "bob", "carol", "dave"} {
		f.addUser(t, u)
	}

	_, err := f.svc.BookConference(ctx, "alice", "GopherCon") // takes the slot
	require.NoError(t, err)
	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)
	carolID, err := f.svc.BookConference(ctx, "carol", "GopherCon")
	require.NoError(t, err)
	daveID, err := f.svc.BookConference(ctx, "dave", "GopherCon")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelBooking(ctx, carolID))

	queued, err := f.waitlists.List(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, []string{bobID, daveID}, queued)

	user, err := f.users.GetByID(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, user.ActiveBookings())
	f.assertInvariants(t, "GopherCon")
}

func TestCancelBooking_Idempotence(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 2)
	f.addUser(t, "alice")

	id, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelBooking(ctx, id))

	before, err := f.confs.GetByName(ctx, "GopherCon")
	require.NoError(t, err)
	slotsBefore := before.AvailableSlots

	err = f.svc.CancelBooking(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyCanceled))

	after, err := f.confs.GetByName(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, slotsBefore, after.AvailableSlots, "failed cancel must not mutate state")

	err = f.svc.CancelBooking(ctx, "no-such-booking")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCancelBooking_AfterConferenceStarted(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")

	id, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	err = f.svc.CancelBooking(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyStarted))

	status, err := f.svc.GetBookingStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, status)
}

// Scenario: bob's confirmation deadline passes before he confirms. The confirm
// call reports "not confirmed" without an error, bob moves to the back of the
// waitlist, and the new head gets a fresh deadline while the slot is free.
func TestConfirm_DeadlinePassedRequeues(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	for _, u := range []string{"alice", "bob", "carol"} {
		f.addUser(t, u)
	}

	aliceID, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)
	carolID, err := f.svc.BookConference(ctx, "carol", "GopherCon")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelBooking(ctx, aliceID)) // stamps bob's deadline

	f.clock.Advance(time.Hour + time.Minute) // past the 1h grace window

	confirmed, err := f.svc.ConfirmWaitlistedBooking(ctx, bobID)
	require.NoError(t, err)
	assert.False(t, confirmed)

	status, err := f.svc.GetBookingStatus(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitlisted, status, "requeued, not canceled")

	queued, err := f.waitlists.List(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, []string{carolID, bobID}, queued, "bob moved to the back")

	carol, err := f.svc.GetBooking(ctx, carolID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(time.Hour), carol.ConfirmationDeadline,
		"fresh deadline stamped on the new head while the slot is free")
	f.assertInvariants(t, "GopherCon")
}

// A waitlisted booking that was never promoted has no deadline, so an eager
// confirm while the conference is still full just requeues it.
func TestConfirm_WithoutPromotionRequeues(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	_, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmWaitlistedBooking(ctx, bobID)
	require.NoError(t, err)
	assert.False(t, confirmed)

	status, err := f.svc.GetBookingStatus(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitlisted, status)
	assert.Empty(t, f.notifier.byEvent("slot_available"), "no promotion while the conference is full")
}

func TestConfirm_NoSlotWhenRaceLost(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	for _, u := range []string{"alice", "bob", "carol"} {
		f.addUser(t, u)
	}

	aliceID, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelBooking(ctx, aliceID))

	// carol books the freed slot before bob confirms.
	_, err = f.svc.BookConference(ctx, "carol", "GopherCon")
	require.NoError(t, err)

	_, err = f.svc.ConfirmWaitlistedBooking(ctx, bobID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoSlot))

	status, err := f.svc.GetBookingStatus(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitlisted, status)
	f.assertInvariants(t, "GopherCon")
}

func TestConfirm_NotWaitlisted(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 2)
	f.addUser(t, "alice")

	id, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)

	_, err = f.svc.ConfirmWaitlistedBooking(ctx, id)
	assert.True(t, errors.Is(err, domain.ErrNotWaitlisted), "confirmed booking")

	require.NoError(t, f.svc.CancelBooking(ctx, id))
	_, err = f.svc.ConfirmWaitlistedBooking(ctx, id)
	assert.True(t, errors.Is(err, domain.ErrNotWaitlisted), "canceled booking")

	_, err = f.svc.ConfirmWaitlistedBooking(ctx, "no-such-booking")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// The conflict rule is re-checked at confirmation time against the user's
// current confirmed bookings. The state is seeded through the stores directly:
// in normal operation eviction removes such a booking first, but a durable
// backing store may surface it.
func TestConfirm_ConflictRecheck(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "conf-1", 2*time.Hour, 1)
	f.addConference(t, "conf-2", 3*time.Hour, 1) // overlaps conf-1
	f.addUser(t, "alice")

	confirmed := domain.NewBooking("alice", "conf-2", f.clock.Now())
	confirmed.Status = domain.StatusConfirmed
	require.NoError(t, f.bookings.Create(ctx, confirmed))

	waitlisted := domain.NewBooking("alice", "conf-1", f.clock.Now())
	waitlisted.Status = domain.StatusWaitlisted
	waitlisted.ConfirmationDeadline = f.clock.Now().Add(time.Hour)
	require.NoError(t, f.bookings.Create(ctx, waitlisted))
	require.NoError(t, f.waitlists.Enqueue(ctx, "conf-1", waitlisted.ID))

	user, err := f.users.GetByID(ctx, "alice")
	require.NoError(t, err)
	user.AddBooking(confirmed.ID, domain.StatusConfirmed)
	user.AddBooking(waitlisted.ID, domain.StatusWaitlisted)
	require.NoError(t, f.users.Update(ctx, user))

	_, err = f.svc.ConfirmWaitlistedBooking(ctx, waitlisted.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, confirmed.ID, derr.BookingID)
}

func TestConfirm_AfterStartCancelsWholeWaitlist(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	for _, u := range []string{"alice", "bob", "carol"} {
		f.addUser(t, u)
	}

	_, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)
	bobID, err := f.svc.BookConference(ctx, "bob", "GopherCon")
	require.NoError(t, err)
	carolID, err := f.svc.BookConference(ctx, "carol", "GopherCon")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)

	_, err = f.svc.ConfirmWaitlistedBooking(ctx, bobID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyStarted))

	for _, id := range []string{bobID, carolID} {
		status, err := f.svc.GetBookingStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCanceled, status)
	}
	queued, err := f.waitlists.List(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Empty(t, queued)

	for _, u := range []string{"bob", "carol"} {
		user, err := f.users.GetByID(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, user.ActiveBookings())
	}
}

// Scenario: alice is waitlisted on P and later gets confirmed into overlapping
// Q. Her waitlisted booking on P is canceled automatically: she cannot attend
// it anymore and must not block other users in P's queue.
func TestEviction_OnConfirmedOverlappingBooking(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "conf-p", 2*time.Hour, 1)
	f.addConference(t, "conf-q", 3*time.Hour, 1) // overlaps conf-p
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	_, err := f.svc.BookConference(ctx, "bob", "conf-p") // fills conf-p
	require.NoError(t, err)
	waitlistedID, err := f.svc.BookConference(ctx, "alice", "conf-p")
	require.NoError(t, err)

	_, err = f.svc.BookConference(ctx, "alice", "conf-q")
	require.NoError(t, err)

	status, err := f.svc.GetBookingStatus(ctx, waitlistedID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, status)

	queued, err := f.waitlists.List(ctx, "conf-p")
	require.NoError(t, err)
	assert.Empty(t, queued)

	canceled := f.notifier.byEvent("canceled")
	require.Len(t, canceled, 1)
	assert.Equal(t, waitlistedID, canceled[0].bookingID)
	assert.Equal(t, "overlapping confirmed booking", canceled[0].reason)

	f.assertInvariants(t, "conf-p")
	f.assertInvariants(t, "conf-q")
}

func TestGetBooking_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")

	id, err := f.svc.BookConference(ctx, "alice", "GopherCon")
	require.NoError(t, err)

	got, err := f.svc.GetBooking(ctx, id)
	require.NoError(t, err)
	got.Status = domain.StatusCanceled

	status, err := f.svc.GetBookingStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, status, "mutating the copy must not touch engine state")

	_, err = f.svc.GetBooking(ctx, "no-such-booking")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListUserBookings(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "conf-1", 2*time.Hour, 1)
	f.addConference(t, "conf-2", 5*time.Hour, 1) // disjoint from conf-1
	f.addUser(t, "alice")

	id1, err := f.svc.BookConference(ctx, "alice", "conf-1")
	require.NoError(t, err)
	id2, err := f.svc.BookConference(ctx, "alice", "conf-2")
	require.NoError(t, err)

	bookings, err := f.svc.ListUserBookings(ctx, "alice")
	require.NoError(t, err)
	ids := []string{bookings[0].ID, bookings[1].ID}
	assert.ElementsMatch(t, []string{id1, id2}, ids)

	_, err = f.svc.ListUserBookings(ctx, "nobody")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// N concurrent booking attempts against K slots must yield exactly K Confirmed
// and N-K Waitlisted bookings with no double allocation.
func TestConferenceReads_ConcurrentWithBookCancelCycles(t *testing.T) {
	const cycles = 200
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, 1)
	f.addUser(t, "alice")

	// Registry reads race with the engine's slot mutations; they must only
	// ever observe committed conference snapshots.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			confs, err := f.registry.ListConferences(ctx)
			if err != nil || len(confs) != 1 {
				continue
			}
			slots := confs[0].AvailableSlots
			if slots != 0 && slots != 1 {
				t.Errorf("observed impossible available slots %d", slots)
				return
			}
			conf, err := f.registry.GetConference(ctx, "GopherCon")
			if err == nil && conf.AvailableSlots != 0 && conf.AvailableSlots != 1 {
				t.Errorf("observed impossible available slots %d", conf.AvailableSlots)
				return
			}
		}
	}()

	for i := 0; i < cycles; i++ {
		bookingID, err := f.svc.BookConference(ctx, "alice", "GopherCon")
		require.NoError(t, err)
		require.NoError(t, f.svc.CancelBooking(ctx, bookingID))
	}
	close(done)
	wg.Wait()

	f.assertInvariants(t, "GopherCon")
}

func TestBookConference_ConcurrentAllocations(t *testing.T) {
	const (
		slots   = 3
		bookers = 10
	)
	ctx := context.Background()
	f := newEngineFixture(t)
	f.addConference(t, "GopherCon", 2*time.Hour, slots)

	userIDs := make([]string, bookers)
	for i := range userIDs {
		userIDs[i] = "user-" + string(rune('a'+i))
		f.addUser(t, userIDs[i])
	}

	bookingIDs := make([]string, bookers)
	errs := make([]error, bookers)
	var wg sync.WaitGroup
	for i, userID := range userIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bookingIDs[i], errs[i] = f.svc.BookConference(ctx, userID, "GopherCon")
		}()
	}
	wg.Wait()

	confirmed, waitlisted := 0, 0
	for i := range userIDs {
		require.NoError(t, errs[i])
		status, err := f.svc.GetBookingStatus(ctx, bookingIDs[i])
		require.NoError(t, err)
		switch status {
		case domain.StatusConfirmed:
			confirmed++
		case domain.StatusWaitlisted:
			waitlisted++
		}
	}
	assert.Equal(t, slots, confirmed)
	assert.Equal(t, bookers-slots, waitlisted)

	conf, err := f.confs.GetByName(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Equal(t, 0, conf.AvailableSlots)

	queued, err := f.waitlists.List(ctx, "GopherCon")
	require.NoError(t, err)
	assert.Len(t, queued, bookers-slots)
}
