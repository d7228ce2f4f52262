package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/bordertrade/internal/assistant"
	"github.com/mmynk/bordertrade/internal/calculator"
	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context(), s.now())
	if err != nil {
		writeInternal(w, r, "Stats", err, "数据获取失败")
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	writeData(w, http.StatusOK, assistant.NavItems(role))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		writeInternal(w, r, "ListGroups", err, "数据获取失败")
		return
	}
	writeData(w, http.StatusOK, groups)
}

// handleResidents lists residents annotated with today's eligibility.
func (s *Server) handleResidents(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")
	residents, err := s.store.ListResidents(r.Context(), groupID)
	if err != nil {
		writeInternal(w, r, "ListResidents", err, "数据获取失败")
		return
	}

	now := s.now()
	members := make([]calculator.Member, 0, len(residents))
	for _, res := range residents {
		members = append(members, calculator.Member{
			Resident:    res,
			Eligibility: calculator.CheckEligibility(res, now),
		})
	}
	writeData(w, http.StatusOK, members)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown order status "+string(status))
		return
	}
	orders, err := s.store.ListOrders(r.Context(), status)
	if err != nil {
		writeInternal(w, r, "ListOrders", err, "数据获取失败")
		return
	}
	writeData(w, http.StatusOK, orders)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, order)
}

func (s *Server) handleSubOrders(w http.ResponseWriter, r *http.Request) {
	order, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	subs, err := s.store.ListSubOrders(r.Context(), order.ID)
	if err != nil {
		writeInternal(w, r, "ListSubOrders", err, "数据获取失败")
		return
	}
	writeData(w, http.StatusOK, subs)
}

// loadOrder fetches the order named in the URL, writing a 404 if it is missing.
func (s *Server) loadOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	id := chi.URLParam(r, "id")
	order, err := s.store.GetOrder(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "订单不存在: "+id)
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, "GetOrder", err, "数据获取失败")
		return nil, false
	}
	return order, true
}
