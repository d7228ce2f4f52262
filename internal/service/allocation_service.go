package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mmynk/bordertrade/internal/calculator"
	"github.com/mmynk/bordertrade/internal/grab"
	"github.com/mmynk/bordertrade/internal/metrics"
	"github.com/mmynk/bordertrade/internal/middleware"
	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

// PlatformStore is the part of storage.Store the allocation service reads.
type PlatformStore interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetResident(ctx context.Context, residentID string) (*models.Resident, error)
	ListResidents(ctx context.Context, groupID string) ([]models.Resident, error)
}

// AllocationService implements bordertrade.v1.AllocationService.
type AllocationService struct {
	store   PlatformStore
	hub     *grab.Hub
	metrics *metrics.Metrics
	now     func() time.Time
}

// ServiceOption configures an AllocationService.
type ServiceOption func(*AllocationService)

// WithClock sets the day previews are evaluated against when the caller gives none.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *AllocationService) { s.now = now }
}

// WithMetrics counts previews on m.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *AllocationService) { s.metrics = m }
}

// NewAllocationService creates a new AllocationService. hub may be nil, in
// which case the grab procedures answer Unavailable.
func NewAllocationService(store PlatformStore, hub *grab.Hub, opts ...ServiceOption) *AllocationService {
	s := &AllocationService{
		store: store,
		hub:   hub,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewAllocation computes an allocation preview for an order.
func (s *AllocationService) PreviewAllocation(
	ctx context.Context,
	req *connect.Request[PreviewAllocationRequest],
) (*connect.Response[PreviewAllocationResponse], error) {
	order, err := s.loadOrder(ctx, req.Msg.OrderID)
	if err != nil {
		return nil, err
	}

	cfg := req.Msg.Options.Apply(calculator.DefaultAllocationConfig(*order, ""))
	if cfg.AsOf.IsZero() {
		cfg.AsOf = s.now()
	}

	slog.Info("PreviewAllocation request received",
		"order_id", order.ID,
		"mode", cfg.Mode,
		"group_id", cfg.GroupID,
	)

	pool, err := s.store.ListResidents(ctx, cfg.GroupID)
	if err != nil {
		slog.Error("PreviewAllocation failed to list residents", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	preview, err := calculator.PreviewAllocation(*order, pool, cfg)
	if err != nil {
		slog.Error("PreviewAllocation failed", "order_id", order.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ObservePreview(string(preview.Mode), preview.Summary.Valid)

	slog.Info("PreviewAllocation completed",
		"order_id", order.ID,
		"lines", len(preview.Lines),
		"valid", preview.Summary.Valid,
	)
	return connect.NewResponse(&PreviewAllocationResponse{Preview: preview}), nil
}

// DistributeProfit shows how an order's service fee would be shared.
func (s *AllocationService) DistributeProfit(
	ctx context.Context,
	req *connect.Request[DistributeProfitRequest],
) (*connect.Response[DistributeProfitResponse], error) {
	slog.Info("DistributeProfit request received", "order_id", req.Msg.OrderID)

	order, err := s.loadOrder(ctx, req.Msg.OrderID)
	if err != nil {
		return nil, err
	}

	split := calculator.DefaultSplitValue
	if req.Msg.SplitValue != nil {
		split = *req.Msg.SplitValue
	}
	cfg := models.DefaultProfitConfig()
	if req.Msg.Config != nil {
		cfg = *req.Msg.Config
	}

	dist, err := calculator.DistributeProfit(*order, cfg, split)
	if err != nil {
		slog.Error("DistributeProfit failed", "order_id", order.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DistributeProfitResponse{Distribution: dist}), nil
}

// PublishGrab opens a grab board for an order.
func (s *AllocationService) PublishGrab(
	ctx context.Context,
	req *connect.Request[PublishGrabRequest],
) (*connect.Response[PublishGrabResponse], error) {
	slog.Info("PublishGrab request received",
		"order_id", req.Msg.OrderID,
		"group_id", req.Msg.GroupID,
		"count", req.Msg.Count,
	)
	if s.hub == nil {
		return nil, connect.NewError(connect.CodeUnavailable, grab.ErrHubStopped)
	}

	order, err := s.loadOrder(ctx, req.Msg.OrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("PublishGrab failed to load group", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	board, err := s.hub.Publish(ctx, grab.PublishRequest{
		Order:      *order,
		GroupID:    req.Msg.GroupID,
		SplitValue: req.Msg.SplitValue,
		Count:      req.Msg.Count,
		Fee:        req.Msg.Fee,
	})
	if err != nil {
		slog.Error("PublishGrab failed", "order_id", order.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PublishGrabResponse{Board: board}), nil
}

// ErrClaimForOther rejects a resident account claiming on behalf of someone else.
var ErrClaimForOther = errors.New("residents may only claim for themselves")

// ClaimGrab takes one slot of a grab board for a resident. Agents and
// enterprises name the resident; a resident account, whose username is its
// resident ID, always claims for itself.
func (s *AllocationService) ClaimGrab(
	ctx context.Context,
	req *connect.Request[ClaimGrabRequest],
) (*connect.Response[ClaimGrabResponse], error) {
	slog.Info("ClaimGrab request received",
		"board_id", req.Msg.BoardID,
		"resident_id", req.Msg.ResidentID,
	)
	if s.hub == nil {
		return nil, connect.NewError(connect.CodeUnavailable, grab.ErrHubStopped)
	}

	residentID, err := claimant(ctx, req.Msg.ResidentID)
	if err != nil {
		slog.Warn("ClaimGrab rejected", "resident_id", req.Msg.ResidentID, "error", err)
		return nil, err
	}
	resident, err := s.store.GetResident(ctx, residentID)
	if err != nil {
		slog.Error("ClaimGrab failed to load resident", "resident_id", residentID, "error", err)
		return nil, toConnectError(err)
	}

	board, ev, err := s.hub.Claim(ctx, req.Msg.BoardID, *resident)
	if err != nil {
		slog.Warn("ClaimGrab rejected",
			"board_id", req.Msg.BoardID,
			"resident_id", resident.ID,
			"error", err,
		)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ClaimGrabResponse{Board: board, Event: ev}), nil
}

// CloseGrab stops a board from taking further claims.
func (s *AllocationService) CloseGrab(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[PublishGrabResponse], error) {
	boardID := req.Msg.GetValue()
	slog.Info("CloseGrab request received", "board_id", boardID)
	if s.hub == nil {
		return nil, connect.NewError(connect.CodeUnavailable, grab.ErrHubStopped)
	}

	board, err := s.hub.Close(ctx, boardID)
	if err != nil {
		slog.Error("CloseGrab failed", "board_id", boardID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PublishGrabResponse{Board: board}), nil
}

// GetGrabBoard returns a board and its event log.
func (s *AllocationService) GetGrabBoard(
	_ context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[GetGrabBoardResponse], error) {
	boardID := req.Msg.GetValue()
	slog.Info("GetGrabBoard request received", "board_id", boardID)
	if s.hub == nil {
		return nil, connect.NewError(connect.CodeUnavailable, grab.ErrHubStopped)
	}

	board, err := s.hub.Board(boardID)
	if err != nil {
		return nil, toConnectError(err)
	}
	events, err := s.hub.Events(boardID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetGrabBoardResponse{Board: board, Events: events}), nil
}

// ListGrabBoards lists the boards of one order, or of every order when the
// value is empty.
func (s *AllocationService) ListGrabBoards(
	_ context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[ListGrabBoardsResponse], error) {
	slog.Info("ListGrabBoards request received", "order_id", req.Msg.GetValue())
	if s.hub == nil {
		return nil, connect.NewError(connect.CodeUnavailable, grab.ErrHubStopped)
	}
	return connect.NewResponse(&ListGrabBoardsResponse{Boards: s.hub.Boards(req.Msg.GetValue())}), nil
}

// claimant resolves whose quota a claim uses.
func claimant(ctx context.Context, requested string) (string, error) {
	if middleware.GetRole(ctx) != models.RoleResident {
		if requested == "" {
			return "", connect.NewError(connect.CodeInvalidArgument, errors.New("resident_id is required"))
		}
		return requested, nil
	}
	self := middleware.GetUsername(ctx)
	if requested != "" && requested != self {
		return "", connect.NewError(connect.CodePermissionDenied, ErrClaimForOther)
	}
	return self, nil
}

func (s *AllocationService) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if orderID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("order_id is required"))
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		slog.Error("Failed to load order", "order_id", orderID, "error", err)
		return nil, toConnectError(err)
	}
	return order, nil
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case calculator.IsValidationError(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, grab.ErrBoardNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, grab.ErrAlreadyClaimed):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, grab.ErrBoardFull),
		errors.Is(err, grab.ErrBoardClosed),
		errors.Is(err, grab.ErrIneligible):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, grab.ErrHubStopped):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
