package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gotd/td/tg"
)

// Message 频道中的一条消息，只读
type Message struct {
	ID    int
	Text  string
	Video *Video
}

// Video 消息附带的视频文件
type Video struct {
	Size     int64
	FileName string
	Location tg.InputFileLocationClass
}

// Matches 文本非空且包含filter，并且带有视频
func Matches(m Message, filter string) bool {
	return m.Video != nil && m.Text != "" && strings.Contains(m.Text, filter)
}

// FileName 优先使用附件文件名，否则 video_<消息ID>.mp4。
// 附件文件名只取最后一段，避免写到下载目录之外。
func FileName(m Message) string {
	if m.Video != nil && m.Video.FileName != "" {
		name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(m.Video.FileName, `\`, "/")))
		if name != "/" && name != "." && name != ".." {
			return name
		}
	}
	return fmt.Sprintf("video_%d.mp4", m.ID)
}

// FromTG 转换接口返回的消息，非视频文档的Video为nil
func FromTG(msg *tg.Message) Message {
	m := Message{ID: msg.ID, Text: msg.Message}

	md, ok := msg.Media.(*tg.MessageMediaDocument)
	if !ok {
		return m
	}
	doc, ok := md.Document.(*tg.Document)
	if !ok {
		return m
	}

	var (
		isVideo  bool
		fileName string
	)
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeVideo:
			isVideo = true
		case *tg.DocumentAttributeFilename:
			fileName = a.FileName
		}
	}
	if !isVideo {
		return m
	}
	m.Video = &Video{
		Size:     doc.Size,
		FileName: fileName,
		Location: doc.AsInputDocumentFileLocation(),
	}
	return m
}
