package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	cm "videodl/common"
	dm "videodl/db"
	"videodl/job"
	"videodl/resume"
	"videodl/scanner"
	"videodl/tgclient"
)

var (
	configPath     string
	downloadFolder string
)

func init() {
	flag.StringVar(&downloadFolder, "download-folder", "downloads", "Folder to save downloaded videos")
	flag.StringVar(&configPath, "config", "config.ini", "Path to the ini config")
}

func main() {
	flag.Parse()

	config, err := cm.LoadConfig(configPath)
	if err == nil {
		err = config.ValidateDownload()
	}
	if err != nil {
		cm.NewLogger("", 0, cm.ConsoleColor()).Fatalf("Invalid configuration: %v", err)
	}

	// 先清理旧日志再创建本次的日志文件
	if err = os.MkdirAll(config.Log.LogDir, 0o755); err != nil {
		cm.NewLogger("", 0, cm.ConsoleColor()).Fatalf("Create log folder %s: %v", config.Log.LogDir, err)
	}
	removed, cleanErr := cm.CleanupLogs(config.Log.LogDir, config.Log.LogFileLimit, nil)
	logPath := cm.RunLogPath(config.Log.LogDir, "download_videos", time.Now())
	logger := cm.NewLogger(logPath, config.Log.LogSplitSize, cm.ConsoleColor())
	for _, f := range removed {
		logger.Infof("Deleted old log file: %s", f)
	}
	if cleanErr != nil {
		logger.Warnf("Failed to clean old logs: %v", cleanErr)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Fatalf("Run terminated with a panic: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, logger, config); err != nil {
		stop()
		logger.Fatalf("Run terminated with an error: %v", err)
	}
}

func run(ctx context.Context, logger *logrus.Logger, config *cm.Config) error {
	if err := os.MkdirAll(downloadFolder, 0o755); err != nil {
		return fmt.Errorf("create download folder %s: %w", downloadFolder, err)
	}

	var ledger job.Recorder
	if config.DB.DBPath != "" {
		l, err := dm.Open(config.DB.DBPath)
		if err != nil {
			return fmt.Errorf("open ledger %s: %w", config.DB.DBPath, err)
		}
		defer l.Close()
		ledger = l
	}

	sess, err := tgclient.New(tgclient.Options{
		AppID:       config.Telegram.APIID,
		AppHash:     config.Telegram.APIHash,
		SessionPath: config.Session.SessionPath,
		Phone:       config.Telegram.Phone,
		Proxy:       config.ProxyURL(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return sess.Run(ctx, func(ctx context.Context, api *tg.Client) error {
		dialogs := tgclient.NewDialogIter(api, tgclient.IterOptions{
			MaxRetry: config.Download.MaxRetry,
			Logger:   logger,
		})
		channel, err := tgclient.ResolvePeer(ctx, dialogs, config.Telegram.ChannelID)
		if err != nil {
			return err
		}
		logger.Infof("Scanning %s (%d) for videos with %q", channel.Name, channel.ID, config.Telegram.MessageText)

		j := &job.Job{
			Messages: scanner.New(api, channel.Peer, scanner.Options{
				Filter:    config.Telegram.MessageText,
				PageSize:  config.Download.PageSize,
				PageDelay: time.Duration(config.Download.PageDelayMs) * time.Millisecond,
				MaxRetry:  config.Download.MaxRetry,
				Logger:    logger,
			}),
			Downloader: resume.New(api, resume.Options{
				Progress: os.Stdout,
				MaxRetry: config.Download.MaxRetry,
				Logger:   logger,
			}),
			Dir:       downloadFolder,
			ChannelID: channel.ID,
			Ledger:    ledger,
			Logger:    logger,
		}
		_, err = j.Run(ctx)
		return err
	})
}
