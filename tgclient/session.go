package tgclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/session"
)

// FileSessionStorage 把会话保存在单个文件中，下次运行无需重新登录
type FileSessionStorage struct {
	FilePath string
}

func (f *FileSessionStorage) LoadSession(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.FilePath)
	if os.IsNotExist(err) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", f.FilePath, err)
	}
	if len(data) == 0 {
		return nil, session.ErrNotFound
	}
	return data, nil
}

func (f *FileSessionStorage) StoreSession(_ context.Context, data []byte) error {
	if dir := filepath.Dir(f.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir %s: %w", dir, err)
		}
	}
	return os.WriteFile(f.FilePath, data, 0o600)
}

// Invalidate 账号失效时把会话文件改名为 .bak，下次运行重新登录
func (f *FileSessionStorage) Invalidate() (string, error) {
	if _, err := os.Stat(f.FilePath); err != nil {
		return "", err
	}
	bak := f.FilePath + ".bak"
	return bak, os.Rename(f.FilePath, bak)
}

var _ session.Storage = (*FileSessionStorage)(nil)
