package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gotd/td/tg"

	cm "videodl/common"
	"videodl/tgclient"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "config.ini", "Path to the ini config")
}

// 列出账号的所有会话，用来找到 channel_id
func main() {
	flag.Parse()
	logger := cm.NewLogger("", 0, cm.ConsoleColor())

	config, err := cm.LoadConfig(configPath)
	if err == nil {
		err = config.ValidateLogin()
	}
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
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
		logger.Fatalf("Create client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sess.Run(ctx, func(ctx context.Context, api *tg.Client) error {
		it := tgclient.NewDialogIter(api, tgclient.IterOptions{
			MaxRetry: config.Download.MaxRetry,
			Logger:   logger,
		})
		for it.Next(ctx) {
			d := it.Value()
			fmt.Printf("Name: %s, ID: %d\n", d.Name, d.ID)
		}
		return it.Err()
	})
	if err != nil {
		stop()
		logger.Fatalf("List dialogs: %v", err)
	}
}
