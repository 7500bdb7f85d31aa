package tgclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
)

// channelMark 频道ID的标记形式为 -(1000000000000 + id)
const channelMark = 1000000000000

type DialogsAPI interface {
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
}

// Dialog 频道、群组或私聊
type Dialog struct {
	Name string
	// ID 标记形式：用户为正数，普通群为 -id，频道/超级群为 -100id
	ID int64
	// ChannelID 仅频道有值，为未标记的频道ID
	ChannelID int64
	Peer      tg.InputPeerClass
}

type IterOptions struct {
	PageSize int
	MaxRetry int
	Logger   logrus.FieldLogger
}

// DialogIter 分页遍历账号的全部会话
type DialogIter struct {
	api  DialogsAPI
	opts IterOptions

	offsetDate int
	offsetID   int
	offsetPeer tg.InputPeerClass
	seen       map[int64]struct{}

	buf  []Dialog
	cur  Dialog
	last bool
	err  error
}

func NewDialogIter(api DialogsAPI, opts IterOptions) *DialogIter {
	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 100
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &DialogIter{
		api:        api,
		opts:       opts,
		offsetPeer: &tg.InputPeerEmpty{},
		seen:       make(map[int64]struct{}),
	}
}

func (it *DialogIter) Next(ctx context.Context) bool {
	for len(it.buf) == 0 {
		if it.err != nil || it.last {
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

func (it *DialogIter) Value() Dialog { return it.cur }

func (it *DialogIter) Err() error { return it.err }

func (it *DialogIter) fetch(ctx context.Context) error {
	req := &tg.MessagesGetDialogsRequest{
		OffsetDate: it.offsetDate,
		OffsetID:   it.offsetID,
		OffsetPeer: it.offsetPeer,
		Limit:      it.opts.PageSize,
	}

	var (
		resp tg.MessagesDialogsClass
		err  error
	)
	for tries := 0; ; tries++ {
		resp, err = it.api.MessagesGetDialogs(ctx, req)
		if err == nil {
			break
		}
		if tries >= it.opts.MaxRetry {
			return fmt.Errorf("get dialogs: %w", err)
		}
		retry, werr := WaitFlood(ctx, err, it.opts.Logger)
		if werr != nil {
			return werr
		}
		if !retry {
			return fmt.Errorf("get dialogs: %w", err)
		}
	}

	var (
		dialogs []tg.DialogClass
		msgs    []tg.MessageClass
		chats   []tg.ChatClass
		users   []tg.UserClass
	)
	switch r := resp.(type) {
	case *tg.MessagesDialogs:
		dialogs, msgs, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
		it.last = true
	case *tg.MessagesDialogsSlice:
		dialogs, msgs, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
	case *tg.MessagesDialogsNotModified:
		it.last = true
		return nil
	default:
		return fmt.Errorf("unexpected dialogs response: %T", resp)
	}

	entities := collectEntities(chats, users)
	var (
		lastDialog *tg.Dialog
		lastPeer   tg.InputPeerClass
		added      int
	)
	for _, dc := range dialogs {
		d, ok := dc.(*tg.Dialog)
		if !ok {
			continue
		}
		id := MarkPeer(d.Peer)
		ent := entities[id]
		lastDialog, lastPeer = d, ent.peer
		if _, dup := it.seen[id]; dup {
			continue
		}
		it.seen[id] = struct{}{}
		added++
		dlg := Dialog{Name: ent.name, ID: id, Peer: ent.peer}
		if p, ok := d.Peer.(*tg.PeerChannel); ok {
			dlg.ChannelID = p.ChannelID
		}
		it.buf = append(it.buf, dlg)
	}

	if added == 0 || lastDialog == nil || len(dialogs) < it.opts.PageSize {
		it.last = true
		return nil
	}

	// 下一页从本页最后一个会话的置顶消息开始
	lastID := MarkPeer(lastDialog.Peer)
	for _, m := range msgs {
		date, peer, ok := messageDate(m)
		if ok && m.GetID() == lastDialog.TopMessage && MarkPeer(peer) == lastID {
			it.offsetDate = date
			break
		}
	}
	it.offsetID = lastDialog.TopMessage
	if lastPeer != nil {
		it.offsetPeer = lastPeer
	} else {
		it.offsetPeer = &tg.InputPeerEmpty{}
	}
	return nil
}

func messageDate(m tg.MessageClass) (int, tg.PeerClass, bool) {
	switch v := m.(type) {
	case *tg.Message:
		return v.Date, v.PeerID, true
	case *tg.MessageService:
		return v.Date, v.PeerID, true
	}
	return 0, nil, false
}

type entity struct {
	name string
	peer tg.InputPeerClass
}

func collectEntities(chats []tg.ChatClass, users []tg.UserClass) map[int64]entity {
	mp := make(map[int64]entity, len(chats)+len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			mp[user.ID] = entity{
				name: joinName(user.FirstName, user.LastName),
				peer: &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash},
			}
		}
	}
	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Chat:
			mp[-chat.ID] = entity{name: chat.Title, peer: &tg.InputPeerChat{ChatID: chat.ID}}
		case *tg.ChatForbidden:
			mp[-chat.ID] = entity{name: chat.Title, peer: &tg.InputPeerChat{ChatID: chat.ID}}
		case *tg.Channel:
			mp[MarkChannel(chat.ID)] = entity{
				name: chat.Title,
				peer: &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash},
			}
		case *tg.ChannelForbidden:
			mp[MarkChannel(chat.ID)] = entity{
				name: chat.Title,
				peer: &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash},
			}
		}
	}
	return mp
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func MarkChannel(id int64) int64 {
	return -(channelMark + id)
}

// MarkPeer 把peer转换为带标记的ID
func MarkPeer(p tg.PeerClass) int64 {
	switch v := p.(type) {
	case *tg.PeerUser:
		return v.UserID
	case *tg.PeerChat:
		return -v.ChatID
	case *tg.PeerChannel:
		return MarkChannel(v.ChannelID)
	}
	return 0
}

// ResolvePeer 在会话列表中查找ID，接受带标记的ID，也接受未标记的频道ID
func ResolvePeer(ctx context.Context, it *DialogIter, id int64) (Dialog, error) {
	var bare *Dialog
	for it.Next(ctx) {
		d := it.Value()
		if d.Peer == nil {
			continue
		}
		if d.ID == id {
			return d, nil
		}
		if bare == nil && d.ChannelID != 0 && d.ChannelID == id {
			bare = &d
		}
	}
	if err := it.Err(); err != nil {
		return Dialog{}, err
	}
	if bare != nil {
		return *bare, nil
	}
	return Dialog{}, fmt.Errorf("channel %d not found in dialogs", id)
}
