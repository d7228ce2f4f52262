package assistant

import (
	"slices"

	"github.com/mmynk/bordertrade/internal/models"
)

// pageViews maps the page names the model may navigate to onto dashboard view IDs.
var pageViews = map[string]string{
	"dashboard":       "dashboard",
	"bilateral trade": "bilateral-trade",
	"customs":         "customs-services",
	"orders":          "orders",
	"residents":       "residents",
	"finance":         "finance",
	"market":          "market",
	"logistics":       "logistics",
	"news":            "news",
	"risk":            "risk",
	"cloud db":        "cloud-db",
	"enterprise":      "enterprise-dashboard",
	"profile":         "resident-dashboard",
}

// PageKeys returns the navigable page names in sorted order.
func PageKeys() []string {
	keys := make([]string, 0, len(pageViews))
	for k := range pageViews {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ViewForPage returns the view ID for a page name.
func ViewForPage(page string) (string, bool) {
	v, ok := pageViews[page]
	return v, ok
}

// NavItem is one sidebar entry.
type NavItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// RoleGuest is the navigation role of a visitor who has not signed in.
const RoleGuest models.Role = "guest"

var navItems = map[models.Role][]NavItem{
	models.RoleAgent: {
		{ID: "dashboard", Label: "数据看板 (Dashboard)", Icon: "LayoutDashboard"},
		{ID: "residents", Label: "边民与合作社管理", Icon: "UserCircle"},
		{ID: "orders", Label: "交易申报审核", Icon: "ListOrdered"},
		{ID: "finance", Label: "资金结算中心", Icon: "Wallet"},
		{ID: "risk", Label: "风控预警中心", Icon: "ShieldCheck"},
		{ID: "cloud-db", Label: "阿里云数据库", Icon: "Database"},
		{ID: "bilateral-trade", Label: "一级市场/互市", Icon: "Store"},
		{ID: "customs-services", Label: "海关通关服务", Icon: "Truck"},
		{ID: "news", Label: "政策资讯配置", Icon: "Newspaper"},
	},
	models.RoleEnterprise: {
		{ID: "enterprise-dashboard", Label: "企业中心", Icon: "LayoutDashboard"},
		{ID: "market", Label: "采购大厅", Icon: "ShoppingCart"},
		{ID: "orders", Label: "订单管理", Icon: "ListOrdered"},
	},
	models.RoleResident: {
		{ID: "resident-dashboard", Label: "个人首页", Icon: "UserCircle"},
		{ID: "market", Label: "互市大厅", Icon: "Store"},
	},
	RoleGuest: {
		{ID: "dashboard", Label: "公开看板", Icon: "LayoutDashboard"},
		{ID: "market", Label: "市场行情", Icon: "Store"},
	},
}

// NavItems returns the sidebar for role. Unknown roles get the guest sidebar.
func NavItems(role models.Role) []NavItem {
	items, ok := navItems[role]
	if !ok {
		items = navItems[RoleGuest]
	}
	return slices.Clone(items)
}
