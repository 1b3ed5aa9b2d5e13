package archive

import (
	"errors"
	"fmt"
)

// Kind 标识归档处理失败的类别。
type Kind int

const (
	// InvalidFileType 上传的不是 ZIP 归档。
	InvalidFileType Kind = iota + 1
	// MissingFile 归档中缺少期望的条目。
	MissingFile
	// ParseError 条目不是合法的 JSON。
	ParseError
	// FormatError JSON 合法但结构不符合预期。
	FormatError
)

func (k Kind) String() string {
	switch k {
	case InvalidFileType:
		return "InvalidFileType"
	case MissingFile:
		return "MissingFile"
	case ParseError:
		return "ParseError"
	case FormatError:
		return "FormatError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error 是提取过程中返回的唯一错误类型。
// File 为 "followers" 或 "following"，与文件无关的错误为空。
type Error struct {
	Kind Kind
	File string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidFileType:
		if e.Err != nil {
			return fmt.Sprintf("please select a ZIP file containing your Instagram data: %v", e.Err)
		}
		return "please select a ZIP file containing your Instagram data"
	case MissingFile:
		return fmt.Sprintf("could not find %s in connections/followers_and_following/ folder", entryFileName(e.File))
	case ParseError:
		return fmt.Sprintf("invalid JSON format in %s file: %v", e.File, e.Err)
	case FormatError:
		if e.Err != nil {
			return fmt.Sprintf("invalid data format in %s file: %v", e.File, e.Err)
		}
		return fmt.Sprintf("invalid data format in %s file", e.File)
	default:
		return fmt.Sprintf("archive error (%s): %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, &Error{Kind: MissingFile}) 只按 Kind（以及非空的 File）匹配。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.File == "" || t.File == e.File
}

// IsKind 报告 err 链中是否存在指定类别的 *Error。
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf 返回 err 的类别，非归档错误返回 0。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

func missingFile(file string) error {
	return &Error{Kind: MissingFile, File: file}
}

func parseError(file string, err error) error {
	return &Error{Kind: ParseError, File: file, Err: err}
}

func formatError(file string, err error) error {
	return &Error{Kind: FormatError, File: file, Err: err}
}

func entryFileName(file string) string {
	switch file {
	case FollowersFile:
		return "followers_1.json"
	case FollowingFile:
		return "following.json"
	default:
		return file
	}
}
