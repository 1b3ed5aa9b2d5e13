// Package analyzer 计算粉丝与关注列表之间的关系并渲染结果。
//
// 文件划分：
// - relationships.go: 集合计算 (互关、未回关、粉丝) 与比率
// - insights.go: 动态洞察
// - report.go: text / markdown / json 输出
// - formatters.go: 格式化辅助函数
// - types.go: JSON 结构体定义
package analyzer
