package analyzer

import (
	"fmt"
	"net/url"

	"github.com/dustin/go-humanize"
)

// ProfileURLBase 是用户主页链接的前缀。
const ProfileURLBase = "https://instagram.com/"

// ProfileURL 返回用户的主页链接。
func ProfileURL(username string) string {
	return ProfileURLBase + url.PathEscape(username)
}

// FormatCount 将计数格式化为带千位分隔符的字符串 (例如 "12,345")。
// 注意：已导出 (首字母大写)。
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatPercent 将百分比格式化为保留一位小数的字符串。
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatBytes 将字节数转换为人类可读的字符串 (例如 "1.2 MiB")。
// 注意：已导出 (首字母大写)。
func FormatBytes(b int64) string {
	if b < 0 {
		return fmt.Sprintf("%d B", b)
	}
	return humanize.IBytes(uint64(b))
}
