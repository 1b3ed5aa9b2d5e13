package analyzer

import "fmt"

// Insights 根据分析结果生成四条动态洞察，顺序固定：
// 未回关、互关质量、粉丝关注比、潜在互动。
func Insights(a *Analysis) []Insight {
	return []Insight{
		{Color: "red", Title: "Unbalanced Follows", Description: unbalancedInsight(len(a.NotFollowingBack))},
		{Color: "purple", Title: "Connections Quality", Description: mutualInsight(len(a.Mutuals))},
		{Color: "blue", Title: "Follow Ratio Analysis", Description: ratioInsight(a)},
		{Color: "green", Title: "Engagement Potential", Description: potentialInsight(len(a.NotFollowedBack))},
	}
}

func mutualInsight(n int) string {
	switch {
	case n == 0:
		return "No mutual connections - consider engaging more with followers"
	case n <= 299:
		return fmt.Sprintf("%d mutual connections - decent engagement level", n)
	case n <= 999:
		return fmt.Sprintf("%d mutual connections - good community engagement", n)
	case n <= 9999:
		return fmt.Sprintf("%d mutual connections - strong community presence", n)
	default:
		return fmt.Sprintf("%d mutual connections - excellent community engagement", n)
	}
}

func unbalancedInsight(n int) string {
	switch {
	case n == 0:
		return "Perfect balance - everyone you follow follows you back!"
	case n <= 50:
		return fmt.Sprintf("%d unbalanced follows - very manageable", n)
	case n <= 200:
		return fmt.Sprintf("%d unbalanced follows - consider reviewing", n)
	case n <= 500:
		return fmt.Sprintf("%d unbalanced follows - might need cleanup", n)
	default:
		return fmt.Sprintf("%d unbalanced follows - significant cleanup recommended", n)
	}
}

func ratioInsight(a *Analysis) string {
	ratio, ok := a.FollowRatio()
	if !ok {
		// 没有关注任何人：有粉丝视为影响力强，否则没有可比较的数据
		if len(a.Followers) > 0 {
			return "Strong influence - you have significantly more followers than following"
		}
		return "No connections yet - nothing to compare"
	}
	switch {
	case ratio > 2:
		return "Strong influence - you have significantly more followers than following"
	case ratio > 1.5:
		return "Good influence - healthy follower to following ratio"
	case ratio > 0.8:
		return "Balanced ratio - similar followers and following counts"
	case ratio > 0.5:
		return "Active follower - you follow more people than follow you"
	default:
		return "Very active follower - consider being more selective"
	}
}

func potentialInsight(n int) string {
	switch {
	case n == 0:
		return "Following all your followers - maximum engagement"
	case n <= 100:
		return fmt.Sprintf("%d potential follows - good engagement opportunity", n)
	case n <= 500:
		return fmt.Sprintf("%d potential follows - significant engagement opportunity", n)
	default:
		return fmt.Sprintf("%d potential follows - large untapped audience", n)
	}
}
