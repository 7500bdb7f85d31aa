package resume

import (
	"errors"
	"fmt"
)

// Kind 区分单个文件可以跳过的错误和需要结束整个运行的错误
type Kind int

const (
	// KindLocal 本地文件读写失败，或本地文件比远程大
	KindLocal Kind = iota + 1
	// KindTransfer 网络传输失败，已写入的部分保留，下次继续
	KindTransfer
	// KindSession 会话失效，后续请求都会失败
	KindSession
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindTransfer:
		return "transfer"
	case KindSession:
		return "session"
	}
	return "unknown"
}

var ErrOversized = errors.New("local file is larger than the remote file")

type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error on %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal 是否应该结束整个运行
func (e *Error) Fatal() bool { return e.Kind == KindSession }

// IsFatal err链中存在致命的下载错误
func IsFatal(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Fatal()
}
