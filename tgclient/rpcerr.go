package tgclient

import (
	"context"
	"errors"
	"time"

	"github.com/gotd/td/tgerr"
	"github.com/sirupsen/logrus"
)

// floodPad 在服务端要求的等待时间之外多等一会
var floodPad = 2 * time.Second

// WaitFlood 如果err是FLOOD_WAIT，等待服务端要求的秒数后返回true，调用方可以重试同一请求。
// 其他错误立即返回false。
func WaitFlood(ctx context.Context, err error, logger logrus.FieldLogger) (bool, error) {
	var rpcErr *tgerr.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != 420 {
		return false, nil
	}
	wait := time.Second*time.Duration(rpcErr.Argument) + floodPad
	if logger != nil {
		logger.Warnf("Flood wait requested, sleeping %v", wait)
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-t.C:
		return true, nil
	}
}

// IsUnauthorized 会话已失效（AUTH_KEY_UNREGISTERED、SESSION_REVOKED 等）
func IsUnauthorized(err error) bool {
	var rpcErr *tgerr.Error
	return errors.As(err, &rpcErr) && rpcErr.Code == 401
}
