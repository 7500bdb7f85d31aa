package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"videodl/common"
	"videodl/tgclient"
)

// ChunkSize 每次请求1MB。upload.getFile 要求 offset 是 limit 的整数倍，
// 所以实际请求从对齐的位置开始，丢弃本地已有的部分。
const ChunkSize = 1024 * 1024

type FileAPI interface {
	UploadGetFile(ctx context.Context, request *tg.UploadGetFileRequest) (tg.UploadFileClass, error)
}

// Target 一次下载的目标，用完即弃
type Target struct {
	Path     string
	Size     int64
	Location tg.InputFileLocationClass
}

type Result struct {
	// Offset 开始时本地已有的字节数，即续传的起点
	Offset  int64
	Written int64
	// AlreadyComplete 本地大小等于远程大小，没有发出任何请求
	AlreadyComplete bool
}

type Options struct {
	// Progress 进度条输出，nil 不显示
	Progress io.Writer
	MaxRetry int
	Logger   logrus.FieldLogger
}

type Downloader struct {
	api  FileAPI
	opts Options
}

func New(api FileAPI, opts Options) *Downloader {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Downloader{api: api, opts: opts}
}

// Download 保证完整的视频内容最终位于 t.Path。
//
// 本地文件大小等于远程大小即视为已完成，不校验内容：长度相同但内容损坏的文件不会被发现。
// 否则从本地大小处续传，每个分块追加到文件末尾，已有字节从不改写。
// 出错时已写入的部分留在磁盘上，下次运行继续。
func (d *Downloader) Download(ctx context.Context, t Target) (Result, error) {
	log := d.opts.Logger

	current, err := fileSize(t.Path)
	if err != nil {
		return Result{}, &Error{Kind: KindLocal, Path: t.Path, Err: err}
	}
	res := Result{Offset: current}
	if current > 0 {
		log.Infof("Partial file found: %s, size: %s", t.Path, humanize.IBytes(uint64(current)))
	}
	if current == t.Size {
		log.Infof("File already fully downloaded: %s", t.Path)
		res.AlreadyComplete = true
		return res, nil
	}
	if current > t.Size {
		return res, &Error{Kind: KindLocal, Path: t.Path, Err: fmt.Errorf("%w: %d > %d", ErrOversized, current, t.Size)}
	}

	log.Infof("Resuming download for: %s at %s of %s", t.Path,
		humanize.IBytes(uint64(current)), humanize.IBytes(uint64(t.Size)))

	bar := common.NewBar(d.opts.Progress, "Downloading "+filepath.Base(t.Path), current, t.Size)
	defer bar.Close()

	offset := current
	for offset < t.Size {
		aligned := offset - offset%ChunkSize
		chunk, err := d.getChunk(ctx, t.Location, aligned)
		if err != nil {
			kind := KindTransfer
			if tgclient.IsUnauthorized(err) {
				kind = KindSession
			}
			return res, &Error{Kind: kind, Path: t.Path, Err: err}
		}
		skip := offset - aligned
		if int64(len(chunk)) <= skip {
			return res, &Error{Kind: KindTransfer, Path: t.Path,
				Err: fmt.Errorf("remote file ended at %d, expected %d bytes", aligned+int64(len(chunk)), t.Size)}
		}
		data := chunk[skip:]
		if remaining := t.Size - offset; int64(len(data)) > remaining {
			data = data[:remaining]
		}

		n, err := appendChunk(t.Path, data)
		offset += int64(n)
		res.Written += int64(n)
		bar.Add(n)
		if err != nil {
			return res, &Error{Kind: KindLocal, Path: t.Path, Err: err}
		}
	}

	log.Infof("Download completed: %s", t.Path)
	return res, nil
}

func (d *Downloader) getChunk(ctx context.Context, loc tg.InputFileLocationClass, offset int64) ([]byte, error) {
	req := &tg.UploadGetFileRequest{
		Location: loc,
		Offset:   offset,
		Limit:    ChunkSize,
	}
	for tries := 0; ; tries++ {
		resp, err := d.api.UploadGetFile(ctx, req)
		if err == nil {
			if f, ok := resp.(*tg.UploadFile); ok {
				return f.Bytes, nil
			}
			return nil, fmt.Errorf("unexpected file response: %T", resp)
		}
		if tries >= d.opts.MaxRetry {
			return nil, err
		}
		retry, werr := tgclient.WaitFlood(ctx, err, d.opts.Logger)
		if werr != nil {
			return nil, werr
		}
		if !retry {
			return nil, err
		}
	}
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !fi.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return fi.Size(), nil
}

// appendChunk 每个分块单独打开、追加、关闭
func appendChunk(path string, data []byte) (int, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
