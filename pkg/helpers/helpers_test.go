package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("u1", "s1", "family")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), aexp, 5*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "family", claims.Role)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not verify with the refresh secret")
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("u1", "s1", "family")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "s3cretpass"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))

	assert.True(t, StrongPassword("abcdefg1"))
	assert.False(t, StrongPassword("abcdefgh"))
	assert.False(t, StrongPassword("1234567"))
}

func TestRedisJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	ctx := context.Background()

	var got map[string]int
	ok, err := RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RedisSetJSON(ctx, rdb, "k", map[string]int{"a": 1}, time.Minute))
	ok, err = RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, got["a"])

	require.NoError(t, RedisDel(ctx, rdb, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestObjectPath(t *testing.T) {
	p, ok := ObjectPath("bkt", PublicURL("bkt", "wills/u1/w1.pdf"))
	assert.True(t, ok)
	assert.Equal(t, "wills/u1/w1.pdf", p)

	_, ok = ObjectPath("bkt", "https://example.com/x.png")
	assert.False(t, ok)
	assert.Nil(t, NewGCSStore(nil, "bkt"))
}

func TestESSearchIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":2},"hits":[{"_id":"b"},{"_id":"a"}]}}`))
	}))
	defer srv.Close()

	es, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	ids, total, err := ESSearchIDs(context.Background(), es, "memorials", map[string]any{"query": map[string]any{"match_all": map[string]any{}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, 2, total)
}
