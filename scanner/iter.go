package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"videodl/tgclient"
)

type HistoryAPI interface {
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
}

type Options struct {
	// Filter 消息文本需要包含的子串
	Filter   string
	PageSize int
	// PageDelay 两次翻页之间的最小间隔，0 不限速
	PageDelay time.Duration
	MaxRetry  int
	Logger    logrus.FieldLogger
}

// Iterator 从最新消息开始遍历整个频道历史，只产出匹配的视频消息。
// 每次运行都从头遍历，不记录已处理过的消息，用完后不能重新开始。
type Iterator struct {
	api     HistoryAPI
	peer    tg.InputPeerClass
	opts    Options
	limiter *rate.Limiter

	offsetID int
	buf      []Message
	cur      Message
	done     bool
	err      error
}

func New(api HistoryAPI, peer tg.InputPeerClass, opts Options) *Iterator {
	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 100
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	limit := rate.Inf
	if opts.PageDelay > 0 {
		limit = rate.Every(opts.PageDelay)
	}
	return &Iterator{
		api:     api,
		peer:    peer,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (it *Iterator) Next(ctx context.Context) bool {
	for len(it.buf) == 0 {
		if it.done || it.err != nil {
			return false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			return false
		}
	}
	it.cur, it.buf = it.buf[0], it.buf[1:]
	return true
}

func (it *Iterator) Value() Message { return it.cur }

func (it *Iterator) Err() error { return it.err }

func (it *Iterator) fetch(ctx context.Context) error {
	if err := it.limiter.Wait(ctx); err != nil {
		return err
	}

	req := &tg.MessagesGetHistoryRequest{
		Peer:     it.peer,
		OffsetID: it.offsetID,
		Limit:    it.opts.PageSize,
	}
	var (
		history tg.MessagesMessagesClass
		err     error
	)
	for tries := 0; ; tries++ {
		history, err = it.api.MessagesGetHistory(ctx, req)
		if err == nil {
			break
		}
		if tries >= it.opts.MaxRetry {
			return fmt.Errorf("get history at %d: %w", it.offsetID, err)
		}
		retry, werr := tgclient.WaitFlood(ctx, err, it.opts.Logger)
		if werr != nil {
			return werr
		}
		if !retry {
			return fmt.Errorf("get history at %d: %w", it.offsetID, err)
		}
	}

	var msgs []tg.MessageClass
	switch resp := history.(type) {
	case *tg.MessagesMessages:
		msgs = resp.Messages
	case *tg.MessagesMessagesSlice:
		msgs = resp.Messages
	case *tg.MessagesChannelMessages:
		msgs = resp.Messages
	case *tg.MessagesMessagesNotModified:
	default:
		return fmt.Errorf("unexpected history response: %T", history)
	}

	if len(msgs) == 0 {
		it.done = true
		return nil
	}

	// 历史按ID从新到旧返回，下一页从本页最小ID继续
	next := it.offsetID
	for _, mc := range msgs {
		id := mc.GetID()
		if next == 0 || id < next {
			next = id
		}
		msg, ok := mc.(*tg.Message)
		if !ok {
			continue
		}
		if m := FromTG(msg); Matches(m, it.opts.Filter) {
			it.buf = append(it.buf, m)
		}
	}
	if next == it.offsetID || next <= 1 {
		it.done = true
	}
	it.offsetID = next
	return nil
}
