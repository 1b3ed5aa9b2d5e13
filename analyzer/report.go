package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const separator = "--------------------------------------------------\n"

// AnalyzeRelationships 分析粉丝与关注列表并返回格式化结果。
// limit 限制每个列表显示的用户数，<=0 表示不限；format 支持 text、markdown、json。
func AnalyzeRelationships(followers, following []string, limit int, format string) (string, error) {
	return RenderAnalysis(Analyze(followers, following), limit, format)
}

// RenderAnalysis 将已有的分析结果渲染为指定格式。
func RenderAnalysis(a *Analysis, limit int, format string) (string, error) {
	if limit < 0 {
		limit = 0
	}
	switch format {
	case "text":
		return renderText(a, limit), nil
	case "markdown":
		return renderMarkdown(a, limit), nil
	case "json":
		result := BuildResult(a, limit)
		jsonBytes, err := json.MarshalIndent(result, "", "  ") // 使用缩进美化输出
		if err != nil {
			errorResult := ErrorResult{Error: fmt.Sprintf("Failed to marshal result to JSON: %v", err)}
			errJsonBytes, _ := json.Marshal(errorResult)
			return string(errJsonBytes), nil // 返回错误信息，但不标记为分析错误
		}
		return string(jsonBytes), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// BuildResult 构造 JSON 输出使用的结构体。
func BuildResult(a *Analysis, limit int) RelationshipAnalysisResult {
	result := RelationshipAnalysisResult{
		FollowersCount:   len(a.Followers),
		FollowingCount:   len(a.Following),
		MutualCount:      len(a.Mutuals),
		FollowBackRate:   a.FollowBackRate(),
		Limit:            limit,
		Mutuals:          buildUserList(a.Mutuals, limit),
		NotFollowingBack: buildUserList(a.NotFollowingBack, limit),
		NotFollowedBack:  buildUserList(a.NotFollowedBack, limit),
		Insights:         Insights(a),
	}
	if ratio, ok := a.FollowRatio(); ok {
		result.FollowRatio = &ratio
	}
	return result
}

func buildUserList(users []string, limit int) UserList {
	shown := truncate(users, limit)
	list := UserList{
		Count:     len(users),
		Truncated: len(shown) < len(users),
		Users:     make([]UserEntry, 0, len(shown)),
	}
	for _, u := range shown {
		list.Users = append(list.Users, UserEntry{Username: u, ProfileURL: ProfileURL(u)})
	}
	return list
}

func truncate(users []string, limit int) []string {
	if limit > 0 && limit < len(users) {
		return users[:limit]
	}
	return users
}

func renderText(a *Analysis, limit int) string {
	var b strings.Builder
	b.WriteString("Follower Relationship Analysis\n")
	b.WriteString(separator)
	b.WriteString(fmt.Sprintf("%-20s %s\n", "Following:", FormatCount(len(a.Following))))
	b.WriteString(fmt.Sprintf("%-20s %s\n", "Followers:", FormatCount(len(a.Followers))))
	b.WriteString(fmt.Sprintf("%-20s %s\n", "Mutual:", FormatCount(len(a.Mutuals))))
	b.WriteString(fmt.Sprintf("%-20s %s\n", "Follow Back Rate:", FormatPercent(a.FollowBackRate())))
	b.WriteString(separator)

	sections := []struct {
		title string
		users []string
	}{
		{"Not Following Back", a.NotFollowingBack},
		{"Mutual Follows", a.Mutuals},
		{"Not Followed Back (Fans)", a.NotFollowedBack},
	}
	for _, s := range sections {
		b.WriteString(fmt.Sprintf("\n%s (%s)\n", s.title, FormatCount(len(s.users))))
		if len(s.users) == 0 {
			b.WriteString("  No users in this category\n")
			continue
		}
		shown := truncate(s.users, limit)
		for _, u := range shown {
			b.WriteString(fmt.Sprintf("  @%-30s %s\n", u, ProfileURL(u)))
		}
		if rest := len(s.users) - len(shown); rest > 0 {
			b.WriteString(fmt.Sprintf("  ... and %s more\n", FormatCount(rest)))
		}
	}

	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("Insights\n")
	b.WriteString(separator)
	for _, in := range Insights(a) {
		b.WriteString(fmt.Sprintf("[%s] %s\n", in.Title, in.Description))
	}
	return b.String()
}

func renderMarkdown(a *Analysis, limit int) string {
	var b strings.Builder
	b.WriteString("# Follower Relationship Analysis\n\n")
	b.WriteString("| Following | Followers | Mutual | Follow Back Rate |\n")
	b.WriteString("|---:|---:|---:|---:|\n")
	b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
		FormatCount(len(a.Following)),
		FormatCount(len(a.Followers)),
		FormatCount(len(a.Mutuals)),
		FormatPercent(a.FollowBackRate())))

	sections := []struct {
		title string
		users []string
	}{
		{"Not Following Back", a.NotFollowingBack},
		{"Mutual Follows", a.Mutuals},
		{"Not Followed Back (Fans)", a.NotFollowedBack},
	}
	for _, s := range sections {
		b.WriteString(fmt.Sprintf("\n## %s (%s)\n\n", s.title, FormatCount(len(s.users))))
		if len(s.users) == 0 {
			b.WriteString("_No users in this category_\n")
			continue
		}
		shown := truncate(s.users, limit)
		for _, u := range shown {
			b.WriteString(fmt.Sprintf("- [@%s](%s)\n", u, ProfileURL(u)))
		}
		if rest := len(s.users) - len(shown); rest > 0 {
			b.WriteString(fmt.Sprintf("- _... and %s more_\n", FormatCount(rest)))
		}
	}

	b.WriteString("\n## Insights\n\n")
	for _, in := range Insights(a) {
		b.WriteString(fmt.Sprintf("- **%s**: %s\n", in.Title, in.Description))
	}
	return b.String()
}
