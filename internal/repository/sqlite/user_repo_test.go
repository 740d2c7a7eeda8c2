package sqlite

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkral/courier/internal/domain"
)

func setupDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(context.Background(), DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestUserRepository_Upsert_InsertAndReplace(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{ID: domain.SentinelID, Username: "lukas", PasswordHash: "hash-1"}
	require.NoError(t, r.Upsert(ctx, u))
	assert.NotEqual(t, domain.SentinelID, u.ID)
	firstID := u.ID

	// Second upsert with the same username: one row, same id, new hash.
	u2 := &domain.User{ID: domain.SentinelID, Username: "lukas", PasswordHash: "hash-2"}
	require.NoError(t, r.Upsert(ctx, u2))
	assert.Equal(t, firstID, u2.ID)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, "lukas").Scan(&count))
	assert.Equal(t, 1, count)

	stored, err := r.GetByUsername(ctx, "lukas")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", stored.PasswordHash)
}

func TestUserRepository_GetByUsername_CaseSensitive(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &domain.User{ID: domain.SentinelID, Username: "Alice", PasswordHash: "h"}))

	_, err := r.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	got, err := r.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)

	_, err := r.GetByID(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"lukas", "martin", "pavel"} {
		require.NoError(t, r.Upsert(ctx, &domain.User{ID: domain.SentinelID, Username: name, PasswordHash: "h"}))
	}

	users, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "lukas", users[0].Username)
	assert.Equal(t, "pavel", users[2].Username)
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db)
	msgs := NewMessageRepository(db)
	ctx := context.Background()

	t.Run("nonexistent id is a no-op", func(t *testing.T) {
		assert.NoError(t, users.Delete(ctx, 99999))
	})

	t.Run("unreferenced user is removed", func(t *testing.T) {
		u := &domain.User{ID: domain.SentinelID, Username: "temp", PasswordHash: "h"}
		require.NoError(t, users.Upsert(ctx, u))
		require.NoError(t, users.Delete(ctx, u.ID))

		_, err := users.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("referenced user surfaces integrity violation", func(t *testing.T) {
		from := &domain.User{ID: domain.SentinelID, Username: "from", PasswordHash: "h"}
		to := &domain.User{ID: domain.SentinelID, Username: "to", PasswordHash: "h"}
		require.NoError(t, users.Upsert(ctx, from))
		require.NoError(t, users.Upsert(ctx, to))
		require.NoError(t, msgs.Create(ctx, domain.NewMessage(from.ID, to.ID, "hi")))

		err := users.Delete(ctx, to.ID)
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		// The row survives the rejected delete.
		_, err = users.GetByID(ctx, to.ID)
		assert.NoError(t, err)
	})
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	exists, err := r.ExistsByUsername(ctx, "lukas")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, r.Upsert(ctx, &domain.User{ID: domain.SentinelID, Username: "lukas", PasswordHash: "h"}))

	exists, err = r.ExistsByUsername(ctx, "lukas")
	require.NoError(t, err)
	assert.True(t, exists)
}
