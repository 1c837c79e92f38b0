package tray

import (
	"fmt"

	"vaulter/internal/dispatch"
)

// Variant 托盘菜单配置
type Variant string

const (
	// VariantFull 带「上传文件」菜单与托盘左键弹出 dropzone
	VariantFull Variant = "full"
	// VariantMenuOnly 仅「显示主窗口」与「退出」
	VariantMenuOnly Variant = "menu_only"
)

// ParseVariant 解析配置值
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantFull, "":
		return VariantFull, nil
	case VariantMenuOnly:
		return VariantMenuOnly, nil
	default:
		return "", fmt.Errorf("unknown tray variant %q (expected full or menu_only)", s)
	}
}

// MenuItem 静态菜单项
type MenuItem struct {
	ID      string
	Label   string
	Tooltip string
}

// BuildMenu 按配置生成固定菜单
func BuildMenu(v Variant) []MenuItem {
	showMain := MenuItem{ID: dispatch.MenuShowMain, Label: "Show Vault-er", Tooltip: "显示应用主窗口"}
	quit := MenuItem{ID: dispatch.MenuQuit, Label: "Quit", Tooltip: "退出应用"}

	if v == VariantMenuOnly {
		return []MenuItem{showMain, quit}
	}
	return []MenuItem{
		{ID: dispatch.MenuUploadFiles, Label: "Upload Files…", Tooltip: "选择文件并上传"},
		showMain,
		quit,
	}
}

// TrayClickEnabled 该配置是否响应托盘左键
func (v Variant) TrayClickEnabled() bool {
	return v != VariantMenuOnly
}

// separatorBefore 「退出」与其它菜单项之间加分隔线
func (m MenuItem) separatorBefore() bool {
	return m.ID == dispatch.MenuQuit
}
