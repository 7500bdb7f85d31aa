package tgclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

type Options struct {
	AppID       int
	AppHash     string
	SessionPath string
	// Phone 为空时首次登录从终端输入
	Phone string
	// Proxy socks5://host:port，为空不使用代理
	Proxy string

	In     io.Reader
	Out    io.Writer
	Logger *logrus.Logger
}

// Session 一次运行只建立一个，显式传给扫描、下载和会话列表
type Session struct {
	client  *telegram.Client
	storage *FileSessionStorage
	auth    *terminalAuth
	log     *logrus.Logger
}

func New(opts Options) (*Session, error) {
	if opts.AppID == 0 || opts.AppHash == "" {
		return nil, errors.New("api id and api hash are required")
	}
	if opts.SessionPath == "" {
		return nil, errors.New("session path is required")
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	storage := &FileSessionStorage{FilePath: opts.SessionPath}
	tgOpts := telegram.Options{
		SessionStorage: storage,
	}
	if opts.Proxy != "" {
		resolver, err := proxyResolver(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("init proxy: %w", err)
		}
		tgOpts.Resolver = resolver
	}

	return &Session{
		client:  telegram.NewClient(opts.AppID, opts.AppHash, tgOpts),
		storage: storage,
		auth:    newTerminalAuth(opts.Phone, opts.In, opts.Out),
		log:     opts.Logger,
	}, nil
}

func proxyResolver(proxyURL string) (dcs.Resolver, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, err
	}
	dc, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("proxy %s does not support context dialing", u.Host)
	}
	return dcs.Plain(dcs.PlainOptions{
		Dial: dc.DialContext,
	}), nil
}

// Run 连接并在需要时交互登录，然后执行f。连接或登录失败直接返回，不重试。
func (s *Session) Run(ctx context.Context, f func(ctx context.Context, api *tg.Client) error) error {
	err := s.client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(s.auth, auth.SendCodeOptions{})
		if err := s.client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		self, err := s.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("get self: %w", err)
		}
		s.log.Infof("Client connected to Telegram as %s (%d)", displayUser(self), self.ID)
		return f(ctx, s.client.API())
	})
	if err != nil && IsUnauthorized(err) {
		if bak, rerr := s.storage.Invalidate(); rerr != nil {
			s.log.Errorf("Session is no longer valid, failed to move it aside: %s|%v", s.storage.FilePath, rerr)
		} else {
			s.log.Errorf("Session is no longer valid, moved to %s", bak)
		}
	}
	return err
}

func displayUser(u *tg.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return joinName(u.FirstName, u.LastName)
}
