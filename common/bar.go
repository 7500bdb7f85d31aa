package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

const barWidth = 50 // 进度条宽度（字符数）

// Bar 单行刷新的下载进度条，可以从已下载的位置开始
type Bar struct {
	w       io.Writer
	name    string
	current int64
	total   int64
	done    bool
}

func NewBar(w io.Writer, name string, initial, total int64) *Bar {
	b := &Bar{w: w, name: name, current: initial, total: total}
	b.render()
	return b
}

// Add 增加已传输的字节数
func (b *Bar) Add(n int) {
	b.current += int64(n)
	b.render()
}

// Close 换行结束进度条，可重复调用
func (b *Bar) Close() {
	if b.done {
		return
	}
	b.done = true
	if b.w != nil {
		fmt.Fprintln(b.w)
	}
}

func (b *Bar) render() {
	if b.done || b.w == nil {
		return
	}
	percent := 100.0
	if b.total > 0 {
		percent = float64(b.current) / float64(b.total) * 100
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(float64(barWidth) * percent / 100)
	bar := strings.Repeat("█", filled) + strings.Repeat("-", barWidth-filled)

	// 输出进度条（使用 \r 刷新同一行）
	fmt.Fprintf(b.w, "\r%s [%s] %.2f%% (%s/%s)", b.name, bar, percent,
		humanize.IBytes(uint64(b.current)), humanize.IBytes(uint64(b.total)))
}
