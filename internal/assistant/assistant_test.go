package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/bordertrade/internal/models"
)

type fakeGenerator struct {
	result GenerateResult
	err    error
	got    GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req GenerateRequest) (GenerateResult, error) {
	f.got = req
	return f.result, f.err
}

type fakePlatform struct{}

func (fakePlatform) ListOrders(context.Context, models.OrderStatus) ([]*models.Order, error) {
	return []*models.Order{
		{ID: "1", Status: models.OrderProcessing},
		{ID: "2", Status: models.OrderProcessing},
		{ID: "3", Status: models.OrderPendingDeposit},
		{ID: "4", Status: models.OrderCompleted},
	}, nil
}

func (fakePlatform) ListResidents(context.Context, string) ([]models.Resident, error) {
	return []models.Resident{
		{ID: "R-1", Status: models.ResidentActive},
		{ID: "R-2", Status: models.ResidentSuspended},
	}, nil
}

func TestChat(t *testing.T) {
	tests := []struct {
		name   string
		result GenerateResult
		want   ChatReply
	}{
		{
			name:   "plain answer",
			result: GenerateResult{Text: "今日交易平稳。"},
			want:   ChatReply{Text: "今日交易平稳。"},
		},
		{
			name:   "empty answer falls back",
			result: GenerateResult{},
			want:   ChatReply{Text: fallbackReply},
		},
		{
			name:   "navigation",
			result: GenerateResult{Text: "ignored", NavigatePage: "cloud db"},
			want:   ChatReply{Text: "好的，已为您跳转至 **cloud db** 管理模块。", NavigateTo: "cloud-db"},
		},
		{
			name:   "unknown page is ignored",
			result: GenerateResult{Text: "好的", NavigatePage: "admin"},
			want:   ChatReply{Text: "好的"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{result: tt.result}
			a := New(gen, fakePlatform{})
			got, err := a.Chat(context.Background(), ChatRequest{
				Message:     "数据库状态健康吗？",
				Role:        "agent",
				CurrentView: "orders",
				History:     []Message{{Role: "user", Text: "你好"}, {Role: "model", Text: "您好"}},
			})
			if err != nil {
				t.Fatalf("Chat failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("Chat() mismatch (-want +got):\n%s", diff)
			}
			if len(gen.got.History) != 2 || gen.got.Message != "数据库状态健康吗？" {
				t.Errorf("conversation not forwarded: %+v", gen.got)
			}
		})
	}
}

func TestSystemInstructionCarriesContext(t *testing.T) {
	gen := &fakeGenerator{result: GenerateResult{Text: "ok"}}
	if _, err := New(gen, fakePlatform{}).Chat(context.Background(), ChatRequest{Message: "hi"}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	instr := gen.got.SystemInstruction
	for _, want := range []string{"角色：游客", "正在查看：dashboard", "进行中订单：2 笔", "待缴纳保证金订单：1 笔", "活跃边民总数：1 人", NavigateFunction} {
		if !strings.Contains(instr, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}
	if diff := cmp.Diff(PageKeys(), gen.got.Pages); diff != "" {
		t.Errorf("pages mismatch:\n%s", diff)
	}
}

func TestChatErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := New(nil, nil).Chat(ctx, ChatRequest{Message: "hi"}); !errors.Is(err, ErrDisabled) {
		t.Errorf("disabled: error = %v, want ErrDisabled", err)
	}
	if _, err := New(&fakeGenerator{}, nil).Chat(ctx, ChatRequest{Message: "  "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank: error = %v, want ErrEmptyMessage", err)
	}
	boom := errors.New("quota exceeded")
	if _, err := New(&fakeGenerator{err: boom}, nil).Chat(ctx, ChatRequest{Message: "hi"}); !errors.Is(err, boom) {
		t.Errorf("generator failure: error = %v, want wrapped %v", err, boom)
	}
}

func TestNavItems(t *testing.T) {
	if got := NavItems(models.RoleAgent); len(got) != 9 || got[0].ID != "dashboard" {
		t.Errorf("agent nav = %+v", got)
	}
	if got := NavItems("stranger"); len(got) != 2 || got[1].ID != "market" {
		t.Errorf("unknown role should get guest nav, got %+v", got)
	}

	// Callers may not mutate the shared table.
	items := NavItems(models.RoleResident)
	items[0].Label = "changed"
	if NavItems(models.RoleResident)[0].Label == "changed" {
		t.Error("NavItems returned shared storage")
	}
}

func TestPageViews(t *testing.T) {
	for _, k := range PageKeys() {
		if _, ok := ViewForPage(k); !ok {
			t.Errorf("page %q has no view", k)
		}
	}
	if v, _ := ViewForPage("profile"); v != "resident-dashboard" {
		t.Errorf("profile view = %q", v)
	}
}
