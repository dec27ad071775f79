package tweet

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/database"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})
	db, err := gorm.Open(dialector, database.Options("silent"))
	require.NoError(t, err)

	store := NewStore(db)
	store.newID = func() string { return "11111111-1111-1111-1111-111111111111" }
	return store, mock
}

func TestStoreCreateRecord(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "tweets"`).WillReturnResult(sqlmock.NewResult(0, 1))

	handle, err := store.CreateRecord(context.Background(), Collection, Fields{
		FieldText:      "hello",
		FieldCreatedAt: int64(1),
		FieldUsername:  "jiwon",
		FieldUserID:    "u1",
	})

	require.NoError(t, err)
	assert.Equal(t, RecordHandle{Collection: "tweets", ID: "11111111-1111-1111-1111-111111111111"}, handle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateRecordError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(`INSERT INTO "tweets"`).WillReturnError(boom)

	_, err := store.CreateRecord(context.Background(), Collection, Fields{FieldText: "hello"})
	assert.ErrorIs(t, err, boom)
}

func TestStorePatchRecord(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"row updated", 1, nil},
		{"row missing", 0, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectExec(`UPDATE "tweets" SET "photo"`).
				WithArgs("https://cdn.example/p.png", "t1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := store.PatchRecord(context.Background(), RecordHandle{Collection: Collection, ID: "t1"},
				Fields{FieldPhoto: "https://cdn.example/p.png"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoreListPosts(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "tweet", "created_at", "username", "user_id", "photo"}).
		AddRow("t2", "second", int64(2), "jiwon", "u1", "https://cdn.example/p.png").
		AddRow("t1", "first", int64(1), "익명", "u2", nil)
	mock.ExpectQuery(`SELECT \* FROM "tweets" ORDER BY created_at DESC`).WillReturnRows(rows)

	posts, err := store.ListPosts(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "t2", posts[0].ID)
	require.NotNil(t, posts[0].PhotoURL)
	assert.Equal(t, "https://cdn.example/p.png", *posts[0].PhotoURL)
	assert.Nil(t, posts[1].PhotoURL)
	assert.Equal(t, "u2", posts[1].AuthorID)
}

func TestStoreGetPost(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "tweet", "created_at", "username", "user_id", "photo"}).
			AddRow("t1", "hello", int64(1), "jiwon", "u1", nil))
	post, err := store.GetPost(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)

	mock.ExpectQuery(`SELECT`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "tweet", "created_at", "username", "user_id", "photo"}))
	_, err = store.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
