// Package instructions 记录数据导出说明是否已展示，并提供导出步骤。
package instructions

import (
	"fmt"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/store"
)

// VisitedKey 是记录说明已展示的标记名。
const VisitedKey = "ig-analyzer-visited"

type Step struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var steps = []Step{
	{1, "Open Instagram Settings", "Go to your Instagram profile and open settings from the menu icon."},
	{2, "Navigate to Account Center", `Select "Account Center" in the settings menu.`},
	{3, "Open Your Information and Permissions", `Under "Account Settings", select "Your Information and Permissions".`},
	{4, "Export Your Information", `Click "Export your information" and choose "Export to device".`},
	{5, "Configure Your Export", "Customize information: Followers and Following. Date range: All time. Format: JSON."},
	{6, "Analyze the ZIP File", "Pass the downloaded ZIP file as-is. followers_1.json and following.json are located automatically."},
}

// Guide 通过 FlagStore 读写已展示标记。
type Guide struct {
	store store.FlagStore
}

func NewGuide(s store.FlagStore) *Guide {
	return &Guide{store: s}
}

// Steps 返回导出步骤的副本。
func (g *Guide) Steps() []Step {
	return append([]Step(nil), steps...)
}

// ShouldShow 在调用 MarkShown 之前一直返回 true。
func (g *Guide) ShouldShow() (bool, error) {
	visited, err := g.store.GetFlag(VisitedKey)
	if err != nil {
		return false, fmt.Errorf("read instructions flag: %w", err)
	}
	return !visited, nil
}

func (g *Guide) MarkShown() error {
	if err := g.store.SetFlag(VisitedKey, true); err != nil {
		return fmt.Errorf("mark instructions shown: %w", err)
	}
	return nil
}

// Reset 恢复为默认的“未展示”状态。
func (g *Guide) Reset() error {
	if err := g.store.DeleteFlag(VisitedKey); err != nil {
		return fmt.Errorf("reset instructions flag: %w", err)
	}
	return nil
}
