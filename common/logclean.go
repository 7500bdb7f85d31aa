package common

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const logSuffix = ".log"

// RunLogPath 每次运行一个带时间戳的日志文件
func RunLogPath(dir, prefix string, now time.Time) string {
	return filepath.Join(dir, prefix+"_"+now.Format("2006-01-02_15-04-05")+logSuffix)
}

type logFile struct {
	path string
	time time.Time
}

// CleanupLogs 在创建新日志之前调用：删除最旧的日志直到数量小于limit，
// 这样新日志创建后总数不超过limit。返回被删除的文件。
// 没有可移植的创建时间，按修改时间排序，时间相同按文件名（含时间戳）排序。
func CleanupLogs(dir string, limit int, logger logrus.FieldLogger) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]logFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), logSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, e.Name()), time: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].time.Equal(files[j].time) {
			return files[i].path < files[j].path
		}
		return files[i].time.Before(files[j].time)
	})

	var removed []string
	for len(files) > 0 && len(files) >= limit {
		oldest := files[0]
		files = files[1:]
		if err := os.Remove(oldest.path); err != nil {
			return removed, err
		}
		removed = append(removed, oldest.path)
		if logger != nil {
			logger.Infof("Deleted old log file: %s", oldest.path)
		}
	}
	return removed, nil
}
