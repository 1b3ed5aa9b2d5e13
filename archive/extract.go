// Package archive 从 Instagram 数据导出的 ZIP 归档中提取粉丝与关注列表。
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// FollowersFile 与 FollowingFile 是错误信息和日志中使用的文件标识。
	FollowersFile = "followers"
	FollowingFile = "following"

	// DefaultMaxEntryBytes 单个 JSON 条目解压后的默认上限。
	DefaultMaxEntryBytes int64 = 256 << 20
)

var (
	followersPattern = regexp.MustCompile(`(?i)connections/followers_and_following/followers_1\.json$`)
	followingPattern = regexp.MustCompile(`(?i)connections/followers_and_following/following\.json$`)
)

// FollowLists 是一次提取的结果，保持归档中的顺序与重复项。
type FollowLists struct {
	Followers []string `json:"followers"`
	Following []string `json:"following"`
}

// Extractor 定位并解析归档中的两个 JSON 条目。零值可直接使用。
type Extractor struct {
	// MaxEntryBytes 限制单个条目解压后的大小，<=0 表示使用 DefaultMaxEntryBytes。
	MaxEntryBytes int64
	Logger        *zap.Logger
}

// Extract 使用默认配置从内存中的归档字节提取列表。
func Extract(data []byte) (*FollowLists, error) {
	var e Extractor
	return e.ExtractBytes(context.Background(), data)
}

// ExtractBytes 从内存中的归档字节提取列表。
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte) (*FollowLists, error) {
	return e.ExtractContext(ctx, bytes.NewReader(data), int64(len(data)))
}

// ExtractFile 打开本地归档文件并提取列表。
func (e *Extractor) ExtractFile(ctx context.Context, filePath string) (*FollowLists, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive '%s': %w", filePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive '%s': %w", filePath, err)
	}
	return e.ExtractContext(ctx, f, info.Size())
}

// ExtractContext 是提取的核心：定位条目、并发解压并解析两个文件。
// 任一文件出错时不返回部分结果；两个都出错时返回 followers 的错误。
func (e *Extractor) ExtractContext(ctx context.Context, r io.ReaderAt, size int64) (*FollowLists, error) {
	log := e.logger()

	zr, err := zip.NewReader(r, size)
	if err != nil {
		log.Debug("Archive is not a readable ZIP container", zap.Error(err))
		return nil, &Error{Kind: InvalidFileType, Err: err}
	}

	followersEntry := findEntry(zr.File, followersPattern)
	if followersEntry == nil {
		return nil, missingFile(FollowersFile)
	}
	followingEntry := findEntry(zr.File, followingPattern)
	if followingEntry == nil {
		return nil, missingFile(FollowingFile)
	}
	log.Debug("Located archive entries",
		zap.String("followers", followersEntry.Name),
		zap.String("following", followingEntry.Name),
		zap.Int("entries", len(zr.File)))

	// 两个条目并发解码，但错误按 followers、following 的固定顺序返回，
	// 同一个归档每次得到相同的错误。
	lists := &FollowLists{}
	var errs [2]error
	var g errgroup.Group
	g.Go(func() error {
		lists.Followers, errs[0] = e.decodeEntry(ctx, followersEntry, FollowersFile, parseFollowers)
		return nil
	})
	g.Go(func() error {
		lists.Following, errs[1] = e.decodeEntry(ctx, followingEntry, FollowingFile, parseFollowing)
		return nil
	})
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	log.Info("Extracted follow lists",
		zap.Int("followers", len(lists.Followers)),
		zap.Int("following", len(lists.Following)))
	return lists, nil
}

func (e *Extractor) decodeEntry(ctx context.Context, f *zip.File, file string, parse func([]byte) ([]string, error)) ([]string, error) {
	content, err := e.readEntry(ctx, f, file)
	if err != nil {
		return nil, err
	}
	return parse(content)
}

func (e *Extractor) readEntry(ctx context.Context, f *zip.File, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := e.MaxEntryBytes
	if limit <= 0 {
		limit = DefaultMaxEntryBytes
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, formatError(file, fmt.Errorf("entry %s is larger than %d bytes", f.Name, limit))
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &Error{Kind: InvalidFileType, File: file, Err: fmt.Errorf("open entry %s: %w", f.Name, err)}
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return nil, &Error{Kind: InvalidFileType, File: file, Err: fmt.Errorf("read entry %s: %w", f.Name, err)}
		}
		return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
	}
	if int64(len(content)) > limit {
		return nil, formatError(file, fmt.Errorf("entry %s is larger than %d bytes", f.Name, limit))
	}
	return trimBOM(content), nil
}

func (e *Extractor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// findEntry 返回归档顺序中第一个匹配的普通文件条目。
func findEntry(files []*zip.File, pattern *regexp.Regexp) *zip.File {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		// 部分 Windows 压缩工具会写入反斜杠路径
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if pattern.MatchString(name) {
			return f
		}
	}
	return nil
}

// ValidateFileType 检查上传文件的名称与 Content-Type 是否为 ZIP。
func ValidateFileType(name, contentType string) error {
	if contentType == "application/zip" || contentType == "application/x-zip-compressed" {
		return nil
	}
	if strings.EqualFold(path.Ext(name), ".zip") {
		return nil
	}
	return &Error{Kind: InvalidFileType, Err: fmt.Errorf("%q (%s) is not a .zip file", name, contentTypeOrUnknown(contentType))}
}

func contentTypeOrUnknown(ct string) string {
	if ct == "" {
		return "unknown content type"
	}
	return ct
}
