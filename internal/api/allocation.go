package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/bordertrade/internal/assistant"
	"github.com/mmynk/bordertrade/internal/calculator"
)

// handlePreview computes an allocation preview for an order. The body is a
// partial allocation config applied over the order's defaults.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	order, ok := s.loadOrder(w, r)
	if !ok {
		return
	}

	var opts calculator.AllocationOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	cfg := opts.Apply(calculator.DefaultAllocationConfig(*order, ""))
	if cfg.AsOf.IsZero() {
		cfg.AsOf = s.now()
	}

	slog.Info("PreviewAllocation request received",
		"order_id", order.ID,
		"mode", cfg.Mode,
		"group_id", cfg.GroupID,
	)

	pool, err := s.store.ListResidents(r.Context(), cfg.GroupID)
	if err != nil {
		writeInternal(w, r, "PreviewAllocation", err, "数据获取失败")
		return
	}

	preview, err := calculator.PreviewAllocation(*order, pool, cfg)
	if calculator.IsValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeInternal(w, r, "PreviewAllocation", err, "分单预览失败")
		return
	}
	s.metrics.ObservePreview(string(preview.Mode), preview.Summary.Valid)

	writeData(w, http.StatusOK, preview)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.assistant.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "AI 助手未配置")
		return
	}

	var req assistant.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	slog.Info("Chat request received", "role", req.Role, "view", req.CurrentView)

	reply, err := s.assistant.Chat(r.Context(), req)
	switch {
	case err == nil:
		writeData(w, http.StatusOK, reply)
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeInternal(w, r, "Chat", err, "抱歉，云端连接出现了一点小状况。")
	}
}
