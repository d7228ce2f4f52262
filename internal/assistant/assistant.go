// Package assistant answers dashboard chat messages through a generative model
// and turns navigation requests into dashboard view IDs.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/bordertrade/internal/models"
)

var (
	ErrDisabled     = errors.New("assistant is not configured")
	ErrEmptyMessage = errors.New("message must not be empty")
)

const (
	fallbackReply  = "我收到您的信息了，正在为您处理。"
	navigateFormat = "好的，已为您跳转至 **%s** 管理模块。"
)

// Message is one turn of the conversation. Role is "user" or "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// GenerateRequest is what the assistant sends to the model.
type GenerateRequest struct {
	SystemInstruction string
	History           []Message
	Message           string
	// Pages is the set of page names the model may navigate to.
	Pages []string
}

// GenerateResult is the model's answer. NavigatePage is the page named in a
// navigation call, empty if the model did not call it.
type GenerateResult struct {
	Text         string
	NavigatePage string
}

// Generator produces a model reply.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// PlatformSource supplies the live figures quoted to the model.
type PlatformSource interface {
	ListOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)
	ListResidents(ctx context.Context, groupID string) ([]models.Resident, error)
}

// ChatRequest is a dashboard chat message.
type ChatRequest struct {
	Message     string    `json:"message"`
	History     []Message `json:"history"`
	Role        string    `json:"role"`
	CurrentView string    `json:"currentView"`
}

// ChatReply is the answer shown in the chat widget.
type ChatReply struct {
	Text       string `json:"text"`
	NavigateTo string `json:"navigateTo,omitempty"`
}

// Assistant is the dashboard's chat assistant.
type Assistant struct {
	gen      Generator
	platform PlatformSource
}

// New creates an Assistant. A nil gen yields an assistant that returns ErrDisabled.
func New(gen Generator, platform PlatformSource) *Assistant {
	return &Assistant{gen: gen, platform: platform}
}

// Enabled reports whether a generator is configured.
func (a *Assistant) Enabled() bool {
	return a != nil && a.gen != nil
}

// Chat answers one message.
func (a *Assistant) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	summary, err := a.summary(ctx)
	if err != nil {
		return nil, err
	}

	res, err := a.gen.Generate(ctx, GenerateRequest{
		SystemInstruction: systemInstruction(req.Role, req.CurrentView, summary),
		History:           req.History,
		Message:           req.Message,
		Pages:             PageKeys(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	reply := &ChatReply{Text: res.Text}
	if reply.Text == "" {
		reply.Text = fallbackReply
	}
	if res.NavigatePage != "" {
		if view, ok := ViewForPage(res.NavigatePage); ok {
			reply.NavigateTo = view
			reply.Text = fmt.Sprintf(navigateFormat, res.NavigatePage)
		} else {
			slog.Warn("Assistant named an unknown page", "page", res.NavigatePage)
		}
	}
	return reply, nil
}

type platformSummary struct {
	Processing      int
	PendingDeposit  int
	ActiveResidents int
}

func (a *Assistant) summary(ctx context.Context) (platformSummary, error) {
	var s platformSummary
	if a.platform == nil {
		return s, nil
	}
	orders, err := a.platform.ListOrders(ctx, "")
	if err != nil {
		return s, fmt.Errorf("failed to list orders: %w", err)
	}
	for _, o := range orders {
		switch o.Status {
		case models.OrderProcessing:
			s.Processing++
		case models.OrderPendingDeposit:
			s.PendingDeposit++
		}
	}
	residents, err := a.platform.ListResidents(ctx, "")
	if err != nil {
		return s, fmt.Errorf("failed to list residents: %w", err)
	}
	for _, r := range residents {
		if r.Status == models.ResidentActive {
			s.ActiveResidents++
		}
	}
	return s, nil
}

func systemInstruction(role, view string, s platformSummary) string {
	if role == "" {
		role = "游客"
	}
	if view == "" {
		view = "dashboard"
	}
	var b strings.Builder
	b.WriteString("你是“云智边贸”数字化平台的智能专家助手。\n")
	b.WriteString("当前用户信息：\n")
	fmt.Fprintf(&b, "- 角色：%s\n- 正在查看：%s\n\n", role, view)
	b.WriteString("平台实时数据摘要：\n")
	fmt.Fprintf(&b, "- 进行中订单：%d 笔\n", s.Processing)
	fmt.Fprintf(&b, "- 待缴纳保证金订单：%d 笔\n", s.PendingDeposit)
	fmt.Fprintf(&b, "- 活跃边民总数：%d 人\n\n", s.ActiveResidents)
	b.WriteString("你的职责：\n")
	b.WriteString("1. 分析平台数据并回答关于贸易、订单、基础设施、风控等业务问题。\n")
	b.WriteString("2. 如果用户问到数据库压力或底层系统状态，请引导至 'cloud db' 页面。\n")
	fmt.Fprintf(&b, "3. 当用户想看某个模块时，必须使用 '%s' 工具。\n\n", NavigateFunction)
	b.WriteString("对话风格：专业、高效、亲和。请使用中文回答。")
	return b.String()
}
