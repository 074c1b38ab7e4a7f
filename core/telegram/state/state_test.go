package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func newRedis(t *testing.T, opts RedisOptions) (Manager, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisManager(client, opts), srv
}

func backends(t *testing.T) map[string]Manager {
	t.Helper()
	rm, _ := newRedis(t, RedisOptions{})
	return map[string]Manager{
		"memory": NewMemoryManager(),
		"redis":  rm,
	}
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, mgr := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, err := mgr.Get(ctx, 1)
			require.NoError(t, err)
			assert.True(t, s.Idle())
			assert.NotNil(t, s.Data)

			busy, err := mgr.InProgress(ctx, 1)
			require.NoError(t, err)
			assert.False(t, busy)

			require.NoError(t, mgr.Merge(ctx, 1, "q1_phone", map[string]string{"unique_id": "17", "fullname": "Ali"}))
			require.NoError(t, mgr.Merge(ctx, 1, "q2_address", map[string]string{"phone": "+998"}))

			s, err = mgr.Get(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, State("q2_address"), s.State)
			assert.Equal(t, map[string]string{"unique_id": "17", "fullname": "Ali", "phone": "+998"}, s.Data)
			assert.False(t, s.UpdatedAt.IsZero())

			busy, err = mgr.InProgress(ctx, 1)
			require.NoError(t, err)
			assert.True(t, busy)

			require.NoError(t, mgr.SetState(ctx, 1, "q1_phone"))
			s, err = mgr.Get(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, State("q1_phone"), s.State)
			assert.Equal(t, "+998", s.Data["phone"])

			require.NoError(t, mgr.Clear(ctx, 1))
			s, err = mgr.Get(ctx, 1)
			require.NoError(t, err)
			assert.True(t, s.Idle())
			assert.Empty(t, s.Data)
		})
	}
}

func TestManagerReturnsCopies(t *testing.T) {
	ctx := context.Background()
	for name, mgr := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, mgr.Merge(ctx, 2, "q5_document", map[string]string{"a": "1"}))
			s, err := mgr.Get(ctx, 2)
			require.NoError(t, err)
			s.Data["a"] = "changed"
			s.State = "completed"

			again, err := mgr.Get(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, "1", again.Data["a"])
			assert.Equal(t, State("q5_document"), again.State)
		})
	}
}

func TestSaveRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	for name, mgr := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, mgr.Merge(ctx, 3, "q9_grant", map[string]string{"has_grant": ""}))
			snap, err := mgr.Get(ctx, 3)
			require.NoError(t, err)

			require.NoError(t, mgr.Merge(ctx, 3, "q9_grant_details", map[string]string{"has_grant": "Ha"}))
			require.NoError(t, mgr.Save(ctx, 3, snap))

			s, err := mgr.Get(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, State("q9_grant"), s.State)
			assert.Equal(t, "", s.Data["has_grant"])
		})
	}
}

func TestRedisSurvivesNewManager(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	first := NewRedisManager(client, RedisOptions{})
	require.NoError(t, first.Merge(ctx, 10, "q14_father_alive", map[string]string{"father_alive": "Ha"}))

	second := NewRedisManager(client, RedisOptions{})
	s, err := second.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, State("q14_father_alive"), s.State)
	assert.Equal(t, "Ha", s.Data["father_alive"])
	assert.True(t, srv.Exists("session:10"))
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	var ops []string
	mgr, srv := newRedis(t, RedisOptions{
		Prefix:  "kuaf:s:",
		TTL:     time.Hour,
		Observe: func(op string, err error) { ops = append(ops, op) },
	})
	require.NoError(t, mgr.SetState(ctx, 4, "search"))
	assert.Equal(t, time.Hour, srv.TTL("kuaf:s:4"))

	srv.FastForward(2 * time.Hour)
	s, err := mgr.Get(ctx, 4)
	require.NoError(t, err)
	assert.True(t, s.Idle())
	assert.Contains(t, ops, "save")
	assert.Contains(t, ops, "get")
}

func TestRedisCorruptValue(t *testing.T) {
	mgr, srv := newRedis(t, RedisOptions{})
	require.NoError(t, srv.Set("session:5", "{not json"))
	_, err := mgr.Get(context.Background(), 5)
	require.Error(t, err)
}

func TestRedisUnavailable(t *testing.T) {
	mgr, srv := newRedis(t, RedisOptions{})
	srv.Close()
	_, err := mgr.Get(context.Background(), 6)
	require.Error(t, err)
	assert.False(t, errors.Is(err, redis.Nil))
}

func testContext(userID int64, text string) tele.Context {
	return tele.NewContext(nil, tele.Update{
		ID: 1,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID},
		},
	})
}

func TestRouterDispatchesByState(t *testing.T) {
	ctx := context.Background()
	mgr := NewMemoryManager()
	r := NewRouter(mgr)

	var got []string
	r.Handle(func(c tele.Context) error {
		got = append(got, "survey:"+c.Text())
		return nil
	}, "q1_phone", "q2_address")
	r.Handle(func(c tele.Context) error {
		got = append(got, "admin:"+c.Text())
		return nil
	}, "admin_import")

	c := testContext(7, "hello")
	if r.InProgress(c) {
		t.Fatalf("idle user must not be in progress")
	}

	require.NoError(t, mgr.SetState(ctx, 7, "q2_address"))
	c = testContext(7, "Chilonzor")
	if !r.InProgress(c) {
		t.Fatalf("user in q2_address must be in progress")
	}
	require.NoError(t, r.ManagerHandler(c))

	require.NoError(t, mgr.SetState(ctx, 7, "admin_import"))
	c = testContext(7, "file")
	require.NoError(t, r.ManagerHandler(c))

	require.NoError(t, mgr.SetState(ctx, 7, "unrouted"))
	c = testContext(7, "x")
	assert.False(t, r.InProgress(c))

	assert.Equal(t, []string{"survey:Chilonzor", "admin:file"}, got)
}

func TestLoadCachesPerUpdate(t *testing.T) {
	ctx := context.Background()
	mgr := NewMemoryManager()
	require.NoError(t, mgr.SetState(ctx, 8, "q3_location"))

	c := testContext(8, "")
	first, err := Load(c, mgr)
	require.NoError(t, err)
	require.NoError(t, mgr.SetState(ctx, 8, "q4_previous_education"))

	cached, err := Load(c, mgr)
	require.NoError(t, err)
	assert.Same(t, first, cached)

	Forget(c)
	fresh, err := Load(c, mgr)
	require.NoError(t, err)
	assert.Equal(t, State("q4_previous_education"), fresh.State)
}
