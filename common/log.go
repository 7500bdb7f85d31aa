package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// writerHook 把日志按不带颜色的格式额外写到另一个Writer
type writerHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level
	Formatter logrus.Formatter
}

func (hook *writerHook) Fire(entry *logrus.Entry) error {
	line, err := hook.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = hook.Writer.Write(line)
	return err
}

func (hook *writerHook) Levels() []logrus.Level {
	return hook.LogLevels
}

// CustomFormatter 自定义日志格式(带颜色)
type CustomFormatter struct {
	UseColor bool
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format("2006-01-02 15:04:05,000")
	level := strings.ToUpper(entry.Level.String())
	message := strings.TrimRight(entry.Message, "\n")

	levelPart := level
	if f.UseColor {
		switch entry.Level {
		case logrus.DebugLevel, logrus.TraceLevel:
			levelPart = color.BlueString(level)
		case logrus.InfoLevel:
			levelPart = color.GreenString(level)
		case logrus.WarnLevel:
			levelPart = color.YellowString(level)
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			levelPart = color.RedString(level)
		}
	}

	return []byte(fmt.Sprintf("%s - %s - %s\n", timestamp, levelPart, message)), nil
}

// levelsUpTo 返回严重程度不低于lvl的级别
func levelsUpTo(lvl logrus.Level) []logrus.Level {
	var lis []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= lvl {
			lis = append(lis, l)
		}
	}
	return lis
}

// NewLogger 控制台和文件同时输出，logPath为空时只输出到控制台
func NewLogger(logPath string, logSize int, useColor bool) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&CustomFormatter{UseColor: useColor})
	log.SetOutput(os.Stdout)

	if logPath == "" {
		return log
	}

	// 按大小切分，保留数量由 CleanupLogs 控制
	fileLogger := &lumberjack.Logger{
		Filename:  logPath,
		MaxSize:   logSize,
		Compress:  false,
		LocalTime: true,
	}
	log.AddHook(&writerHook{
		Writer:    fileLogger,
		LogLevels: levelsUpTo(logrus.InfoLevel),
		Formatter: &CustomFormatter{UseColor: false},
	})
	return log
}

// ConsoleColor 终端才使用颜色
func ConsoleColor() bool {
	return !color.NoColor
}
