// Package grab runs first-come-first-served grab boards for split orders.
//
// Every change to a board is an Event appended to the board's log. Board state
// is derived from the log, and all appends are made by the single goroutine
// running Hub.Run, so claims are ordered exactly as they arrive on the queue.
package grab

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bordertrade/internal/calculator"
)

var (
	ErrBoardNotFound  = errors.New("grab board not found")
	ErrBoardFull      = errors.New("grab board has no free slots")
	ErrBoardClosed    = errors.New("grab board is closed")
	ErrAlreadyClaimed = errors.New("resident already holds a slot on this board")
	ErrIneligible     = errors.New("resident is not eligible to claim")
	ErrHubStopped     = errors.New("grab hub is not running")
	ErrPanicked       = errors.New("grab hub request panicked")
)

// EventKind names a board log entry.
type EventKind string

const (
	EventPublished EventKind = "published"
	EventClaimed   EventKind = "claimed"
	EventClosed    EventKind = "closed"
)

// Event is one entry of a board's append-only log.
type Event struct {
	Seq          int64     `json:"seq"`
	BoardID      string    `json:"boardId"`
	Kind         EventKind `json:"kind"`
	At           time.Time `json:"at"`
	Slot         int       `json:"slot,omitempty"`
	ResidentID   string    `json:"residentId,omitempty"`
	ResidentName string    `json:"residentName,omitempty"`
	SubOrderID   string    `json:"subOrderId,omitempty"`

	// Set on published events only.
	OrderID    string                      `json:"orderId,omitempty"`
	GroupID    string                      `json:"groupId,omitempty"`
	SplitValue decimal.Decimal             `json:"splitValue,omitzero"`
	Lines      []calculator.AllocationLine `json:"lines,omitempty"`
}

// BoardStatus is the derived state of a board.
type BoardStatus string

const (
	BoardOpen   BoardStatus = "open"
	BoardFull   BoardStatus = "full"
	BoardClosed BoardStatus = "closed"
)

// Slot is one line of a board. Unclaimed slots keep the placeholder line.
type Slot struct {
	calculator.AllocationLine
	SubOrderID string    `json:"subOrderId,omitempty"`
	ClaimedAt  time.Time `json:"claimedAt,omitzero"`
}

// Board is the state of one grab board as derived from its events.
type Board struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	GroupID    string          `json:"groupId,omitempty"`
	SplitValue decimal.Decimal `json:"splitValue"`
	Status     BoardStatus     `json:"status"`
	Claimed    int             `json:"claimed"`
	Slots      []Slot          `json:"slots"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Remaining returns the number of unclaimed slots.
func (b *Board) Remaining() int {
	return len(b.Slots) - b.Claimed
}

// HasResident reports whether residentID holds a slot on b.
func (b *Board) HasResident(residentID string) bool {
	for _, s := range b.Slots {
		if s.Status == calculator.LineAssigned && s.ID == residentID {
			return true
		}
	}
	return false
}

// clone returns a deep copy safe to hand to callers.
func (b *Board) clone() Board {
	c := *b
	c.Slots = append([]Slot(nil), b.Slots...)
	return c
}

// apply folds ev into b. It is the only place board state changes.
func (b *Board) apply(ev Event) {
	switch ev.Kind {
	case EventPublished:
		b.ID = ev.BoardID
		b.OrderID = ev.OrderID
		b.GroupID = ev.GroupID
		b.SplitValue = ev.SplitValue
		b.CreatedAt = ev.At
		b.Slots = make([]Slot, len(ev.Lines))
		for i, l := range ev.Lines {
			b.Slots[i] = Slot{AllocationLine: l}
		}
	case EventClaimed:
		s := &b.Slots[ev.Slot-1]
		s.ID = ev.ResidentID
		s.Name = ev.ResidentName
		s.Status = calculator.LineAssigned
		s.SubOrderID = ev.SubOrderID
		s.ClaimedAt = ev.At
		b.Claimed++
	case EventClosed:
		b.Status = BoardClosed
		return
	}

	if b.Status == BoardClosed {
		return
	}
	if b.Remaining() == 0 {
		b.Status = BoardFull
	} else {
		b.Status = BoardOpen
	}
}

// Replay rebuilds a board from its event log.
func Replay(events []Event) (Board, error) {
	if len(events) == 0 || events[0].Kind != EventPublished {
		return Board{}, ErrBoardNotFound
	}
	var b Board
	for _, ev := range events {
		b.apply(ev)
	}
	return b, nil
}
