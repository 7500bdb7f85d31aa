package job

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"videodl/db"
	"videodl/resume"
	"videodl/scanner"
)

type Messages interface {
	Next(ctx context.Context) bool
	Value() scanner.Message
	Err() error
}

type Downloader interface {
	Download(ctx context.Context, t resume.Target) (resume.Result, error)
}

// Recorder 可选的下载记录
type Recorder interface {
	Record(ctx context.Context, v *db.Video) error
}

type Job struct {
	Messages   Messages
	Downloader Downloader
	Dir        string
	ChannelID  int64
	Ledger     Recorder
	Logger     logrus.FieldLogger
}

type Stats struct {
	Matched    int
	Downloaded int
	Complete   int
	Failed     int
}

func (s Stats) String() string {
	return fmt.Sprintf("matched %d, downloaded %d, already complete %d, failed %d",
		s.Matched, s.Downloaded, s.Complete, s.Failed)
}

// Target 每条匹配的消息对应一个下载目标
func Target(dir string, m scanner.Message) resume.Target {
	return resume.Target{
		Path:     filepath.Join(dir, scanner.FileName(m)),
		Size:     m.Video.Size,
		Location: m.Video.Location,
	}
}

// Run 按扫描顺序逐个下载。单个文件失败只记录日志并继续，
// 会话失效或遍历历史失败时结束运行。
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	log := j.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	log.Info("Start looking through messages.")
	for j.Messages.Next(ctx) {
		m := j.Messages.Value()
		if m.Video == nil {
			continue
		}
		stats.Matched++
		name := scanner.FileName(m)
		log.Infof("Found video with: %s", name)

		target := Target(j.Dir, m)
		res, err := j.Downloader.Download(ctx, target)
		if err != nil {
			stats.Failed++
			log.Errorf("Error downloading video %s: %v", name, err)
			if resume.IsFatal(err) || ctx.Err() != nil {
				return stats, err
			}
			continue
		}
		if res.AlreadyComplete {
			stats.Complete++
		} else {
			stats.Downloaded++
		}

		if j.Ledger != nil {
			err = j.Ledger.Record(ctx, &db.Video{
				Path:      target.Path,
				ChannelID: j.ChannelID,
				MessageID: m.ID,
				FileName:  name,
				Size:      target.Size,
				Message:   m.Text,
			})
			if err != nil {
				log.Warnf("Failed to record %s: %v", name, err)
			}
		}
	}
	if err := j.Messages.Err(); err != nil {
		return stats, fmt.Errorf("scan messages: %w", err)
	}
	log.Infof("Scan finished: %s", stats)
	return stats, nil
}
