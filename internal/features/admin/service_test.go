package admin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"ronid.ru/shop-bot/internal/common"
)

// testHash генерирует хеш в том же формате, что scripts/generate_hash.go,
// но с лёгкими параметрами, чтобы тесты не жгли память.
func testHash(t *testing.T, password string) string {
	t.Helper()
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	var memory uint32 = 1024
	var iterations uint32 = 1
	var parallelism uint8 = 1
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestMainAdminProtected(t *testing.T) {
	r := NewRegistry(1000, "", nil)
	ctx := context.Background()

	require.True(t, r.IsAdmin(1000))
	require.ErrorIs(t, r.Remove(ctx, 1000), common.ErrMainAdminProtected)
	require.True(t, r.IsAdmin(1000))
}

func TestAddRemoveAdmin(t *testing.T) {
	r := NewRegistry(1000, "", nil)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, 2000))
	require.True(t, r.IsAdmin(2000))
	require.ErrorIs(t, r.Add(ctx, 2000), common.ErrAdminExists)

	require.NoError(t, r.Remove(ctx, 2000))
	require.False(t, r.IsAdmin(2000))
	require.ErrorIs(t, r.Remove(ctx, 2000), common.ErrNotAdmin)
}

func TestAllSorted(t *testing.T) {
	r := NewRegistry(3000, "", nil)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, 1000))
	require.NoError(t, r.Add(ctx, 2000))

	all := r.All()
	require.Len(t, all, 3)
	require.Equal(t, int64(1000), all[0].ChatID)
	require.Equal(t, int64(3000), all[2].ChatID)
}

func TestVerifyPassword(t *testing.T) {
	hash := testHash(t, "секрет")
	r := NewRegistry(1000, hash, nil)

	require.False(t, r.HasActiveSession(1000))
	require.ErrorIs(t, r.VerifyPassword(1000, "не тот"), common.ErrWrongPassword)
	require.NoError(t, r.VerifyPassword(1000, "секрет"))
	require.True(t, r.HasActiveSession(1000))
}

func TestVerifyPasswordBruteForceLockout(t *testing.T) {
	hash := testHash(t, "секрет")
	r := NewRegistry(1000, hash, nil)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, r.VerifyPassword(1000, "не тот"), common.ErrWrongPassword)
	}
	// четвёртая попытка блокируется даже с верным паролем
	require.ErrorIs(t, r.VerifyPassword(1000, "секрет"), common.ErrTooManyAttempts)
}

func TestVerifyPasswordBadHashFormat(t *testing.T) {
	r := NewRegistry(1000, "не хеш вовсе", nil)
	require.ErrorIs(t, r.VerifyPassword(1000, "секрет"), common.ErrWrongPassword)
}
