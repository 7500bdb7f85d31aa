package common

import (
	"errors"
	"fmt"

	"github.com/gotd/td/telegram"
	"gopkg.in/ini.v1"
)

const filterKey = "MESSAGE_TEXT"

var (
	ErrMissingAPIID     = errors.New("telegram.api_id is required")
	ErrMissingAPIHash   = errors.New("telegram.api_hash is required")
	ErrMissingChannelID = errors.New("telegram.channel_id is required")
	ErrMissingFilter    = errors.New("telegram." + filterKey + " is required")
)

type Config struct {
	Telegram struct {
		APIID       int    `ini:"api_id"`
		APIHash     string `ini:"api_hash"`
		ChannelID   int64  `ini:"channel_id"`
		MessageText string `ini:"MESSAGE_TEXT"`
		Phone       string `ini:"phone"`
		hasFilter   bool   `ini:"-"`
	} `ini:"telegram"`

	Session struct {
		SessionPath string `ini:"sessionPath"`
	} `ini:"session"`

	NET struct {
		UseProxy  bool   `ini:"useProxy"`
		ProxyHost string `ini:"proxyHost"`
		ProxyPort int    `ini:"proxyPort"`
	} `ini:"net"`

	Log struct {
		LogDir       string `ini:"logDir"`
		LogFileLimit int    `ini:"logFileLimit"`
		LogSplitSize int    `ini:"logSplitSize"`
	} `ini:"log"`

	Download struct {
		MaxRetry    int `ini:"maxRetry"`
		PageSize    int `ini:"pageSize"`
		PageDelayMs int `ini:"pageDelayMs"`
	} `ini:"download"`

	DB struct {
		DBPath string `ini:"dbPath"`
	} `ini:"database"`
}

// defaults 未配置的键保留这里的值，ini.MapTo 不会覆盖缺失的键
func defaults() *Config {
	c := new(Config)
	c.Session.SessionPath = "user_session.json"
	c.Log.LogDir = "logs"
	c.Log.LogFileLimit = 10
	c.Log.LogSplitSize = 2
	c.Download.MaxRetry = 5
	c.Download.PageSize = 100
	c.Download.PageDelayMs = 800
	return c
}

// LoadConfig 读取ini配置并填充默认值，校验由各命令按需调用
func LoadConfig(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	config := defaults()
	if err = f.MapTo(config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	config.Telegram.hasFilter = f.Section("telegram").HasKey(filterKey)

	// -1 使用gotd内置测试应用
	if config.Telegram.APIID == -1 {
		config.Telegram.APIID = telegram.TestAppID
		if config.Telegram.APIHash == "" {
			config.Telegram.APIHash = telegram.TestAppHash
		}
	}
	if config.Log.LogFileLimit < 1 {
		config.Log.LogFileLimit = 1
	}
	if config.Log.LogSplitSize <= 0 {
		config.Log.LogSplitSize = 2
	}
	if config.Download.MaxRetry < 0 {
		config.Download.MaxRetry = 0
	}
	if config.Download.PageSize <= 0 || config.Download.PageSize > 100 {
		config.Download.PageSize = 100
	}
	return config, nil
}

// ValidateLogin 连接Telegram需要的字段
func (c *Config) ValidateLogin() error {
	if c.Telegram.APIID == 0 {
		return ErrMissingAPIID
	}
	if c.Telegram.APIHash == "" {
		return ErrMissingAPIHash
	}
	return nil
}

// ValidateDownload 下载视频额外需要频道和过滤文本，过滤文本允许为空字符串
func (c *Config) ValidateDownload() error {
	if err := c.ValidateLogin(); err != nil {
		return err
	}
	if c.Telegram.ChannelID == 0 {
		return ErrMissingChannelID
	}
	if !c.Telegram.hasFilter {
		return ErrMissingFilter
	}
	return nil
}

// ProxyURL 未启用代理时返回空串
func (c *Config) ProxyURL() string {
	if !c.NET.UseProxy {
		return ""
	}
	return fmt.Sprintf("socks5://%s:%d", c.NET.ProxyHost, c.NET.ProxyPort)
}
