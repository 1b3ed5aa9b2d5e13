package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// 导出文件中的键名，按原样精确匹配（区分大小写）。
const (
	keyStringListData         = "string_list_data"
	keyValue                  = "value"
	keyRelationshipsFollowing = "relationships_following"
)

// 只有根与 relationships_following 的结构是硬性要求；
// 条目内部的字段（title、href、timestamp 等）不做校验，类型不符的条目直接跳过。

// parseFollowers 解析 followers_1.json：根必须是数组。
func parseFollowers(content []byte) ([]string, error) {
	if err := checkJSON(FollowersFile, content); err != nil {
		return nil, err
	}
	items, err := decodeArray(content)
	if err != nil {
		return nil, formatError(FollowersFile, fmt.Errorf("root %w", err))
	}
	return usernames(items), nil
}

// parseFollowing 解析 following.json：根必须是包含 relationships_following 数组的对象。
func parseFollowing(content []byte) ([]string, error) {
	if err := checkJSON(FollowingFile, content); err != nil {
		return nil, err
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(content, &root); err != nil || root == nil {
		return nil, formatError(FollowingFile, fmt.Errorf("root is a JSON %s, expected an object", jsonKind(content)))
	}
	raw, ok := root[keyRelationshipsFollowing]
	if !ok {
		return nil, formatError(FollowingFile, errors.New("relationships_following is missing"))
	}
	items, err := decodeArray(raw)
	if err != nil {
		return nil, formatError(FollowingFile, fmt.Errorf("relationships_following %w", err))
	}
	return usernames(items), nil
}

// decodeArray 要求 raw 是 JSON 数组（null 不算）。
func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, fmt.Errorf("is a JSON %s, expected an array", jsonKind(raw))
	}
	return items, nil
}

func checkJSON(file string, content []byte) error {
	if json.Valid(content) {
		return nil
	}
	// 再解码一次以拿到带偏移量的 SyntaxError
	var v interface{}
	err := json.Unmarshal(content, &v)
	if err == nil {
		err = errors.New("malformed JSON")
	}
	return parseError(file, err)
}

// usernames 按文件顺序收集非空的字符串 value，不去重。
func usernames(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, raw := range items {
		var item map[string]json.RawMessage
		if json.Unmarshal(raw, &item) != nil {
			continue
		}
		var entries []json.RawMessage
		if json.Unmarshal(item[keyStringListData], &entries) != nil {
			continue
		}
		for _, rawEntry := range entries {
			var entry map[string]json.RawMessage
			if json.Unmarshal(rawEntry, &entry) != nil {
				continue
			}
			var value string
			if json.Unmarshal(entry[keyValue], &value) != nil || value == "" {
				continue
			}
			out = append(out, value)
		}
	}
	return out
}

// jsonKind 返回已校验过的 JSON 文本的顶层类型名。
func jsonKind(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "empty value"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// trimBOM 去掉部分导出工具写入的 UTF-8 BOM。
func trimBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
}
