package scanner

import (
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func videoDoc(id int64, size int64, name string) *tg.MessageMediaDocument {
	attrs := []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{Duration: 60, W: 1280, H: 720}}
	if name != "" {
		attrs = append(attrs, &tg.DocumentAttributeFilename{FileName: name})
	}
	return &tg.MessageMediaDocument{
		Document: &tg.Document{
			ID:            id,
			AccessHash:    id * 10,
			FileReference: []byte{1, 2, 3},
			MimeType:      "video/mp4",
			Size:          size,
			Attributes:    attrs,
		},
	}
}

func TestFromTG(t *testing.T) {
	m := FromTG(&tg.Message{ID: 7, Message: "New Episode release", Media: videoDoc(1, 5_000_000, "ep1.mp4")})
	require.NotNil(t, m.Video)
	assert.Equal(t, 7, m.ID)
	assert.Equal(t, "New Episode release", m.Text)
	assert.Equal(t, int64(5_000_000), m.Video.Size)
	assert.Equal(t, "ep1.mp4", m.Video.FileName)
	assert.Equal(t, &tg.InputDocumentFileLocation{
		ID:            1,
		AccessHash:    10,
		FileReference: []byte{1, 2, 3},
	}, m.Video.Location)
}

func TestFromTGNotVideo(t *testing.T) {
	doc := &tg.MessageMediaDocument{Document: &tg.Document{
		ID:         1,
		Size:       10,
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeFilename{FileName: "notes.pdf"}},
	}}
	assert.Nil(t, FromTG(&tg.Message{ID: 1, Message: "Episode", Media: doc}).Video)
	assert.Nil(t, FromTG(&tg.Message{ID: 2, Message: "Episode", Media: &tg.MessageMediaPhoto{}}).Video)
	assert.Nil(t, FromTG(&tg.Message{ID: 3, Message: "Episode"}).Video)
	assert.Nil(t, FromTG(&tg.Message{ID: 4, Media: &tg.MessageMediaDocument{Document: &tg.DocumentEmpty{ID: 1}}}).Video)
}

func TestMatches(t *testing.T) {
	video := &Video{Size: 5_000_000}
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{name: "text contains filter", msg: Message{ID: 1, Text: "New Episode release", Video: video}, want: true},
		{name: "text without filter", msg: Message{ID: 2, Text: "Trailer", Video: video}},
		{name: "video without text", msg: Message{ID: 3, Video: video}},
		{name: "text without video", msg: Message{ID: 4, Text: "Episode 2"}},
		{name: "case sensitive", msg: Message{ID: 5, Text: "episode", Video: video}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.msg, "Episode"))
		})
	}
}

func TestMatchesEmptyFilter(t *testing.T) {
	video := &Video{Size: 1}
	assert.True(t, Matches(Message{Text: "anything", Video: video}, ""))
	assert.False(t, Matches(Message{Video: video}, ""))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{name: "attachment name", msg: Message{ID: 1, Video: &Video{FileName: "ep1.mp4"}}, want: "ep1.mp4"},
		{name: "fallback", msg: Message{ID: 42, Video: &Video{}}, want: "video_42.mp4"},
		{name: "path stripped", msg: Message{ID: 2, Video: &Video{FileName: "../../etc/ep2.mp4"}}, want: "ep2.mp4"},
		{name: "windows path stripped", msg: Message{ID: 3, Video: &Video{FileName: `C:\tmp\ep3.mp4`}}, want: "ep3.mp4"},
		{name: "dot dot only", msg: Message{ID: 4, Video: &Video{FileName: ".."}}, want: "video_4.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.msg))
		})
	}
}
