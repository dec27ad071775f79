package tweet

import (
	"context"
	"errors"
	"unicode/utf16"
)

const (
	Collection = "tweets"

	// MaxTextLength counts UTF-16 code units, like the browser textarea.
	MaxTextLength = 180
	// MaxAttachmentBytes is 1 MiB.
	MaxAttachmentBytes = 1 * 1024 * 1024
)

// Column names of the tweets collection.
const (
	FieldText      = "tweet"
	FieldCreatedAt = "created_at"
	FieldUsername  = "username"
	FieldUserID    = "user_id"
	FieldPhoto     = "photo"
)

var ErrNotFound = errors.New("tweet introuvable")

// Post is a published tweet.
type Post struct {
	ID                string  `json:"id" gorm:"primaryKey;type:uuid"`
	Text              string  `json:"tweet" gorm:"column:tweet;not null"`
	CreatedAt         int64   `json:"createdAt" gorm:"column:created_at;autoCreateTime:false;index"`
	AuthorDisplayName string  `json:"username" gorm:"column:username"`
	AuthorID          string  `json:"userId" gorm:"column:user_id;index;not null"`
	PhotoURL          *string `json:"photo,omitempty" gorm:"column:photo"`
}

func (Post) TableName() string {
	return Collection
}

// Attachment is a file picked for a draft.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Draft is what the user is currently composing.
type Draft struct {
	Text       string
	Attachment *Attachment
}

func TextLength(s string) int {
	n := 0
	for _, r := range s {
		// ranging decodes invalid bytes to U+FFFD, so RuneLen is never -1
		n += utf16.RuneLen(r)
	}
	return n
}

type Fields map[string]interface{}

type RecordHandle struct {
	Collection string
	ID         string
}

type BlobHandle struct {
	Key string
}

// DocumentStore persists structured records.
type DocumentStore interface {
	CreateRecord(ctx context.Context, collection string, fields Fields) (RecordHandle, error)
	PatchRecord(ctx context.Context, handle RecordHandle, fields Fields) error
}

// BlobStore hosts attachments.
type BlobStore interface {
	Upload(ctx context.Context, path string, a Attachment) (BlobHandle, error)
	ResolveURL(ctx context.Context, handle BlobHandle) (string, error)
}

// Reader serves the timeline.
type Reader interface {
	ListPosts(ctx context.Context, limit int) ([]Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
}
