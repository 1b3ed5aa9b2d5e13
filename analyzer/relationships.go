package analyzer

// Analysis 是一次关系分析的结果，每次分析重新计算，不做持久化。
// 所有列表保持源列表中的相对顺序，源列表中的重复项按出现次数保留。
type Analysis struct {
	Followers        []string
	Following        []string
	Mutuals          []string // 互相关注，按关注列表顺序
	NotFollowingBack []string // 我关注但未回关我的人
	NotFollowedBack  []string // 关注我但我未关注的人（粉丝）
}

// Analyze 计算互关、未回关与粉丝三个派生列表。
// 纯函数：不修改输入，空列表返回空结果。
func Analyze(followers, following []string) *Analysis {
	followersSet := make(map[string]struct{}, len(followers))
	for _, u := range followers {
		followersSet[u] = struct{}{}
	}
	followingSet := make(map[string]struct{}, len(following))
	for _, u := range following {
		followingSet[u] = struct{}{}
	}

	a := &Analysis{
		Followers:        append([]string{}, followers...),
		Following:        append([]string{}, following...),
		Mutuals:          make([]string, 0),
		NotFollowingBack: make([]string, 0),
		NotFollowedBack:  make([]string, 0),
	}

	for _, u := range following {
		if _, ok := followersSet[u]; ok {
			a.Mutuals = append(a.Mutuals, u)
		} else {
			a.NotFollowingBack = append(a.NotFollowingBack, u)
		}
	}
	for _, u := range followers {
		if _, ok := followingSet[u]; !ok {
			a.NotFollowedBack = append(a.NotFollowedBack, u)
		}
	}
	return a
}

// FollowBackRate 返回回关率（百分比）：互关数 / 关注数 * 100。
// 关注数为 0 时定义为 0。
func (a *Analysis) FollowBackRate() float64 {
	if len(a.Following) == 0 {
		return 0
	}
	return float64(len(a.Mutuals)) / float64(len(a.Following)) * 100
}

// FollowRatio 返回粉丝数 / 关注数，关注数为 0 时 ok 为 false。
func (a *Analysis) FollowRatio() (ratio float64, ok bool) {
	if len(a.Following) == 0 {
		return 0, false
	}
	return float64(len(a.Followers)) / float64(len(a.Following)), true
}
