package grab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/calculator"
	"github.com/mmynk/bordertrade/internal/metrics"
	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

// PublishRequest describes a new board.
type PublishRequest struct {
	Order   models.Order
	GroupID string
	// SplitValue defaults to calculator.DefaultSplitValue.
	SplitValue decimal.Decimal
	// Count defaults to the number of lines needed to cover the order.
	Count int
	// Fee defaults to the default per-resident fee.
	Fee decimal.Decimal
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock sets the time source used for event timestamps and eligibility.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithMetrics records claim outcomes and open boards on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithQueueSize sets the capacity of the command queue.
func WithQueueSize(n int) Option {
	return func(h *Hub) { h.queueSize = n }
}

type opKind int

const (
	opPublish opKind = iota
	opClaim
	opClose
)

type request struct {
	ctx      context.Context
	kind     opKind
	boardID  string
	publish  PublishRequest
	resident models.Resident
	reply    chan reply
}

type reply struct {
	board Board
	event Event
	err   error
}

// Hub owns every grab board. Mutations are queued and applied one at a time by
// Run; reads see a consistent snapshot under a read lock.
type Hub struct {
	recorder  Recorder
	metrics   *metrics.Metrics
	now       func() time.Time
	queueSize int

	queue   chan request
	stopped chan struct{}

	mu     sync.RWMutex
	seq    int64
	boards map[string]*Board
	events map[string][]Event
	order  []string
}

// NewHub creates a hub. Nothing is applied until Run is called.
func NewHub(rec Recorder, opts ...Option) *Hub {
	if rec == nil {
		rec = NewNoopRecorder()
	}
	h := &Hub{
		recorder:  rec,
		now:       time.Now,
		queueSize: 64,
		stopped:   make(chan struct{}),
		boards:    make(map[string]*Board),
		events:    make(map[string][]Event),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.queue = make(chan request, h.queueSize)
	return h
}

// Run applies queued requests until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.stopped)

	slog.Info("Grab hub started", "queue_size", h.queueSize)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Grab hub stopped", "boards", h.boardCount())
			return nil
		case req := <-h.queue:
			req.reply <- h.handle(req)
		}
	}
}

// Publish opens a new board for an order.
func (h *Hub) Publish(ctx context.Context, pr PublishRequest) (Board, error) {
	r, err := h.submit(ctx, request{kind: opPublish, publish: pr})
	return r.board, err
}

// Claim assigns the first free slot of boardID to resident.
func (h *Hub) Claim(ctx context.Context, boardID string, resident models.Resident) (Board, Event, error) {
	r, err := h.submit(ctx, request{kind: opClaim, boardID: boardID, resident: resident})
	return r.board, r.event, err
}

// Close stops a board from accepting further claims.
func (h *Hub) Close(ctx context.Context, boardID string) (Board, error) {
	r, err := h.submit(ctx, request{kind: opClose, boardID: boardID})
	return r.board, err
}

// Board returns a snapshot of one board.
func (h *Hub) Board(boardID string) (Board, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.boards[boardID]
	if !ok {
		return Board{}, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	return b.clone(), nil
}

// Boards returns snapshots of every board in publish order.
// If orderID is not empty only that order's boards are returned.
func (h *Hub) Boards(orderID string) []Board {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Board, 0, len(h.order))
	for _, id := range h.order {
		b := h.boards[id]
		if orderID != "" && b.OrderID != orderID {
			continue
		}
		out = append(out, b.clone())
	}
	return out
}

// Events returns a copy of a board's event log.
func (h *Hub) Events(boardID string) ([]Event, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	evs, ok := h.events[boardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	return slices.Clone(evs), nil
}

func (h *Hub) submit(ctx context.Context, req request) (reply, error) {
	req.ctx = ctx
	req.reply = make(chan reply, 1)

	select {
	case <-h.stopped:
		return reply{}, ErrHubStopped
	default:
	}

	select {
	case h.queue <- req:
	case <-ctx.Done():
		return reply{}, ctx.Err()
	case <-h.stopped:
		return reply{}, ErrHubStopped
	}

	select {
	case r := <-req.reply:
		return r, r.err
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// handle applies one request. A panic is turned into an error reply so that
// Run keeps serving.
func (h *Hub) handle(req request) (r reply) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Grab hub request panicked", "kind", req.kind, "board_id", req.boardID, "panic", p)
			r = reply{err: fmt.Errorf("%w: %v", ErrPanicked, p)}
		}
	}()

	switch req.kind {
	case opPublish:
		return h.handlePublish(req.publish)
	case opClaim:
		res := h.handleClaim(req.ctx, req.boardID, req.resident)
		h.metrics.ObserveClaim(claimOutcome(res.err))
		return res
	case opClose:
		return h.handleClose(req.boardID)
	}
	return reply{err: fmt.Errorf("unknown request kind %d", req.kind)}
}

func (h *Hub) handlePublish(pr PublishRequest) reply {
	cfg := calculator.DefaultAllocationConfig(pr.Order, pr.GroupID)
	cfg.Mode = calculator.ModeGrab
	if pr.SplitValue.IsPositive() {
		cfg.SplitValue = pr.SplitValue
	}
	if !pr.Fee.IsZero() {
		cfg.ResidentFee = pr.Fee
	}
	if pr.Count != 0 {
		cfg.GrabCount = pr.Count
	} else if n, err := calculator.RequiredLines(pr.Order.TotalAmount, cfg.SplitValue); err == nil {
		cfg.GrabCount = n
	}

	preview, err := calculator.PreviewAllocation(pr.Order, nil, cfg)
	if err != nil {
		return reply{err: err}
	}
	if len(preview.Lines) == 0 {
		return reply{err: calculator.ErrInvalidGrabCount}
	}

	ev := Event{
		BoardID:    uuid.NewString(),
		Kind:       EventPublished,
		OrderID:    pr.Order.ID,
		GroupID:    pr.GroupID,
		SplitValue: cfg.SplitValue,
		Lines:      preview.Lines,
	}
	b := h.append(ev)

	slog.Info("Grab board published",
		"board_id", b.ID,
		"order_id", b.OrderID,
		"slots", len(b.Slots),
	)
	return reply{board: b}
}

func (h *Hub) handleClaim(ctx context.Context, boardID string, r models.Resident) reply {
	h.mu.RLock()
	b, ok := h.boards[boardID]
	var snapshot Board
	if ok {
		snapshot = b.clone()
	}
	h.mu.RUnlock()

	if !ok {
		return reply{err: fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)}
	}
	switch {
	case snapshot.Status == BoardClosed:
		return reply{board: snapshot, err: ErrBoardClosed}
	case snapshot.Remaining() == 0:
		return reply{board: snapshot, err: ErrBoardFull}
	case snapshot.HasResident(r.ID):
		return reply{board: snapshot, err: fmt.Errorf("%w: %s", ErrAlreadyClaimed, r.ID)}
	case snapshot.GroupID != "" && r.GroupID != snapshot.GroupID:
		return reply{board: snapshot, err: fmt.Errorf("%w: %v", ErrIneligible, calculator.ErrUnknownMember)}
	}

	now := h.now()
	if e := calculator.CheckEligibility(r, now); !e.Eligible {
		return reply{board: snapshot, err: fmt.Errorf("%w: %s", ErrIneligible, e.Reason)}
	}

	slot := 0
	for i, s := range snapshot.Slots {
		if s.Status == calculator.LineWaiting {
			slot = i + 1
			break
		}
	}

	sub, err := h.recorder.RecordClaim(ctx, storage.Claim{
		OrderID:    snapshot.OrderID,
		ResidentID: r.ID,
		Amount:     snapshot.SplitValue,
		ClaimedAt:  now,
	})
	if errors.Is(err, storage.ErrQuotaExhausted) {
		return reply{board: snapshot, err: fmt.Errorf("%w: %s", ErrIneligible, calculator.ReasonMonthlyLimitReached)}
	}
	if err != nil {
		return reply{board: snapshot, err: fmt.Errorf("failed to record claim: %w", err)}
	}

	ev := Event{
		BoardID:      boardID,
		Kind:         EventClaimed,
		At:           now,
		Slot:         slot,
		ResidentID:   r.ID,
		ResidentName: r.Name,
	}
	if sub != nil {
		ev.SubOrderID = sub.ID
	}
	updated := h.append(ev)

	slog.Info("Grab slot claimed",
		"board_id", boardID,
		"resident_id", r.ID,
		"slot", slot,
		"remaining", updated.Remaining(),
	)
	return reply{board: updated, event: h.lastEvent(boardID)}
}

func (h *Hub) handleClose(boardID string) reply {
	h.mu.RLock()
	b, ok := h.boards[boardID]
	closed := ok && b.Status == BoardClosed
	h.mu.RUnlock()

	if !ok {
		return reply{err: fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)}
	}
	if closed {
		board, _ := h.Board(boardID)
		return reply{board: board}
	}
	return reply{board: h.append(Event{BoardID: boardID, Kind: EventClosed})}
}

// append stamps ev, adds it to the log and folds it into the board.
func (h *Hub) append(ev Event) Board {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	ev.Seq = h.seq
	if ev.At.IsZero() {
		ev.At = h.now()
	}

	b, ok := h.boards[ev.BoardID]
	if !ok {
		b = &Board{}
		h.boards[ev.BoardID] = b
		h.order = append(h.order, ev.BoardID)
	}
	h.events[ev.BoardID] = append(h.events[ev.BoardID], ev)
	b.apply(ev)

	h.metrics.SetOpenBoards(h.openLocked())
	return b.clone()
}

func (h *Hub) lastEvent(boardID string) Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	evs := h.events[boardID]
	return evs[len(evs)-1]
}

func (h *Hub) openLocked() int {
	n := 0
	for _, b := range h.boards {
		if b.Status == BoardOpen {
			n++
		}
	}
	return n
}

func (h *Hub) boardCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards)
}

// openBoards returns open boards oldest first.
func (h *Hub) openBoards() []Board {
	boards := h.Boards("")
	open := boards[:0]
	for _, b := range boards {
		if b.Status == BoardOpen {
			open = append(open, b)
		}
	}
	return open
}

func claimOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrBoardFull):
		return "full"
	case errors.Is(err, ErrBoardClosed):
		return "closed"
	case errors.Is(err, ErrAlreadyClaimed):
		return "duplicate"
	case errors.Is(err, ErrIneligible):
		return "ineligible"
	case errors.Is(err, ErrBoardNotFound):
		return "not_found"
	default:
		return "error"
	}
}
