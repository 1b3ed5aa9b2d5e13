package analyzer

// --- JSON 输出结构体定义 ---

// ErrorResult 用于在 JSON 格式中返回错误信息
type ErrorResult struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"` // 归档错误类别，例如 "MissingFile"
}

// Insight 是一条根据计数生成的动态洞察
type Insight struct {
	Color       string `json:"color"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UserEntry 代表列表中的单个用户 (JSON)
type UserEntry struct {
	Username   string `json:"username"`
	ProfileURL string `json:"profileUrl"`
}

// UserList 代表一个派生列表 (JSON)
type UserList struct {
	Count     int         `json:"count"`     // 列表总长度（截断前）
	Truncated bool        `json:"truncated"` // 是否因 limit 被截断
	Users     []UserEntry `json:"users"`
}

// RelationshipAnalysisResult 代表关系分析的整体结果 (JSON)
type RelationshipAnalysisResult struct {
	FollowersCount   int       `json:"followersCount"`
	FollowingCount   int       `json:"followingCount"`
	MutualCount      int       `json:"mutualCount"`
	FollowBackRate   float64   `json:"followBackRate"`          // 百分比，关注数为 0 时为 0
	FollowRatio      *float64  `json:"followRatio"`             // 关注数为 0 时为 null
	Limit            int       `json:"limit,omitempty"`         // 每个列表的显示上限，0 表示不限
	Mutuals          UserList  `json:"mutuals"`
	NotFollowingBack UserList  `json:"notFollowingBack"`
	NotFollowedBack  UserList  `json:"notFollowedBack"`
	Insights         []Insight `json:"insights"`
}
