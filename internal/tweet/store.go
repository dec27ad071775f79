package tweet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store keeps tweets in Postgres. Ids are generated here, like a document
// database assigning them on insert.
type Store struct {
	db    *gorm.DB
	newID func() string
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		newID: func() string { return uuid.New().String() },
	}
}

func (s *Store) CreateRecord(ctx context.Context, collection string, fields Fields) (RecordHandle, error) {
	id := s.newID()
	row := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		row[k] = v
	}
	row["id"] = id

	if err := s.db.WithContext(ctx).Table(collection).Create(row).Error; err != nil {
		return RecordHandle{}, fmt.Errorf("insertion %s: %w", collection, err)
	}
	return RecordHandle{Collection: collection, ID: id}, nil
}

func (s *Store) PatchRecord(ctx context.Context, handle RecordHandle, fields Fields) error {
	res := s.db.WithContext(ctx).
		Table(handle.Collection).
		Where("id = ?", handle.ID).
		Updates(map[string]interface{}(fields))
	if res.Error != nil {
		return fmt.Errorf("mise à jour %s/%s: %w", handle.Collection, handle.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mise à jour %s/%s: %w", handle.Collection, handle.ID, ErrNotFound)
	}
	return nil
}

// ListPosts returns the newest tweets first.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	var posts []Post
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("lecture tweets: %w", err)
	}
	return posts, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	var post Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Post{}, ErrNotFound
		}
		return Post{}, fmt.Errorf("lecture tweet %s: %w", id, err)
	}
	return post, nil
}
