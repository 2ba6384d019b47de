package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// fakeSource хранит коллекции в памяти и считает обращения.
type fakeSource struct {
	data  map[string][]Doc
	calls map[string]int
	err   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{data: map[string][]Doc{}, calls: map[string]int{}}
}

func (f *fakeSource) Find(_ context.Context, collection string, where Filter) ([]Doc, error) {
	f.calls[collection]++
	if f.err != nil {
		return nil, f.err
	}
	var out []Doc
	for _, d := range f.data[collection] {
		if where.Matches(d) {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedChannel() *fakeSource {
	src := newFakeSource()
	src.data["users"] = []Doc{
		{"id": "u1", "username": "alice", "password_hash": "x", "refresh_token": "y", "created_at": t0},
		{"id": "u2", "username": "bob", "created_at": t0},
		{"id": "u3", "username": "carol", "created_at": t0},
	}
	src.data["subscriptions"] = []Doc{
		{"id": "s1", "subscriber_id": "u2", "channel_id": "u1", "created_at": t0},
		{"id": "s2", "subscriber_id": "u3", "channel_id": "u1", "created_at": t0.Add(time.Minute)},
		{"id": "s3", "subscriber_id": "u1", "channel_id": "u2", "created_at": t0},
	}
	return src
}

func profileStages(username, viewer string) []Stage {
	return []Stage{
		Match{From: "users", Where: Where(Eq("username", username))},
		Join{From: "subscriptions", LocalField: "id", ForeignField: "channel_id", As: "subscribers"},
		Join{From: "subscriptions", LocalField: "id", ForeignField: "subscriber_id", As: "subscribed_to"},
		Compute{Field: "subscriber_count", Expr: Size("subscribers")},
		Compute{Field: "subscribed_to_count", Expr: Size("subscribed_to")},
		Compute{Field: "is_subscribed", Expr: HasMember("subscribers", "subscriber_id", viewer)},
		Project{Fields: []string{"id", "username", "password_hash", "subscriber_count", "subscribed_to_count", "is_subscribed"}},
	}
}

func TestRun_CountsAndMembership(t *testing.T) {
	ex := NewExecutor(seedChannel())

	res, err := ex.Run(context.Background(), profileStages("alice", "u3")...)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)

	d := res.Docs[0]
	assert.Equal(t, int64(2), d["subscriber_count"])
	assert.Equal(t, int64(1), d["subscribed_to_count"])
	assert.Equal(t, true, d["is_subscribed"])
	assert.NotContains(t, d, "password_hash")
	assert.NotContains(t, d, "subscribers")
	assert.Nil(t, res.Page)
}

func TestRun_MembershipWithoutViewerIsFalse(t *testing.T) {
	ex := NewExecutor(seedChannel())

	res, err := ex.Run(context.Background(), profileStages("alice", "")...)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, false, res.Docs[0]["is_subscribed"])
}

func TestRun_EmptyJoinCountsZero(t *testing.T) {
	ex := NewExecutor(seedChannel())

	res, err := ex.Run(context.Background(), profileStages("carol", "u1")...)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, int64(0), res.Docs[0]["subscriber_count"])
	assert.Equal(t, int64(1), res.Docs[0]["subscribed_to_count"])
	assert.Equal(t, false, res.Docs[0]["is_subscribed"])
}

func TestRun_SingleJoinToleratesMissingOwner(t *testing.T) {
	src := seedChannel()
	src.data["videos"] = []Doc{
		{"id": "v1", "owner_id": "u1", "created_at": t0},
		{"id": "v2", "owner_id": "deleted-user", "created_at": t0},
	}
	ex := NewExecutor(src)

	res, err := ex.Run(context.Background(),
		Match{From: "videos"},
		Join{From: "users", LocalField: "owner_id", ForeignField: "id", As: "owner", Single: true,
			Stages: []Stage{Project{Fields: []string{"id", "username"}}}},
	)
	require.NoError(t, err)
	require.Len(t, res.Docs, 2)

	byID := map[string]Doc{}
	for _, d := range res.Docs {
		byID[d.String("id")] = d
	}
	assert.Equal(t, "alice", byID["v1"].Doc("owner").String("username"))
	assert.Nil(t, byID["v2"].Doc("owner"))
	assert.Equal(t, 1, src.calls["users"], "join must batch into a single store call")
}

func TestRun_ArrayJoinKeepsLocalOrder(t *testing.T) {
	src := newFakeSource()
	src.data["playlists"] = []Doc{{"id": "p1", "video_ids": []string{"v3", "v1", "v2"}, "created_at": t0}}
	src.data["videos"] = []Doc{
		{"id": "v1", "thumbnail_ref": "t1", "created_at": t0},
		{"id": "v2", "thumbnail_ref": "t2", "created_at": t0},
		{"id": "v3", "thumbnail_ref": "t3", "created_at": t0},
	}
	ex := NewExecutor(src)

	res, err := ex.Run(context.Background(),
		Match{From: "playlists"},
		Join{From: "videos", LocalField: "video_ids", ForeignField: "id", As: "videos"},
		Compute{Field: "thumbnail_ref", Expr: FirstField("videos", "thumbnail_ref")},
	)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)

	var ids []string
	for _, v := range res.Docs[0].Docs("videos") {
		ids = append(ids, v.String("id"))
	}
	assert.Equal(t, []string{"v3", "v1", "v2"}, ids)
	assert.Equal(t, "t3", res.Docs[0]["thumbnail_ref"])
}

func TestRun_FirstFieldOfEmptySetIsAbsent(t *testing.T) {
	src := newFakeSource()
	src.data["playlists"] = []Doc{{"id": "p1", "video_ids": []string{}, "created_at": t0}}
	ex := NewExecutor(src)

	res, err := ex.Run(context.Background(),
		Match{From: "playlists"},
		Join{From: "videos", LocalField: "video_ids", ForeignField: "id", As: "videos"},
		Compute{Field: "thumbnail_ref", Expr: FirstField("videos", "thumbnail_ref")},
	)
	require.NoError(t, err)
	assert.Nil(t, res.Docs[0]["thumbnail_ref"])
	assert.Equal(t, 0, src.calls["videos"], "no keys, no store call")
}

func TestRun_SecretsScrubbedFromNestedJoins(t *testing.T) {
	src := seedChannel()
	src.data["videos"] = []Doc{{"id": "v1", "owner_id": "u1", "created_at": t0}}
	ex := NewExecutor(src)

	res, err := ex.Run(context.Background(),
		Match{From: "videos"},
		Join{From: "users", LocalField: "owner_id", ForeignField: "id", As: "owner", Single: true},
	)
	require.NoError(t, err)
	owner := res.Docs[0].Doc("owner")
	require.NotNil(t, owner)
	assert.Equal(t, "alice", owner.String("username"))
	assert.NotContains(t, owner, "password_hash")
	assert.NotContains(t, owner, "refresh_token")
}

func TestRun_SortWithTieBreakAndPaginate(t *testing.T) {
	src := newFakeSource()
	for _, id := range []string{"c", "a", "e", "b", "d"} {
		src.data["videos"] = append(src.data["videos"], Doc{"id": id, "view_count": int64(7), "created_at": t0})
	}
	ex := NewExecutor(src)

	var walked []string
	for page := 1; page <= 3; page++ {
		res, err := ex.Run(context.Background(),
			Match{From: "videos"},
			Sort{Keys: []SortKey{{Field: "view_count", Desc: true}}},
			Paginate{Page: page, Limit: 2},
		)
		require.NoError(t, err)
		require.NotNil(t, res.Page)
		assert.Equal(t, 5, res.Page.TotalCount)
		assert.Equal(t, 3, res.Page.TotalPages)
		for _, d := range res.Docs {
			walked = append(walked, d.String("id"))
		}
	}
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, walked)
}

func TestRun_SumAndMatchFilter(t *testing.T) {
	src := newFakeSource()
	src.data["users"] = []Doc{{"id": "u1", "created_at": t0}}
	src.data["videos"] = []Doc{
		{"id": "v1", "owner_id": "u1", "view_count": int64(10), "is_published": true, "created_at": t0},
		{"id": "v2", "owner_id": "u1", "view_count": int64(5), "is_published": false, "created_at": t0},
	}
	ex := NewExecutor(src)

	res, err := ex.Run(context.Background(),
		Match{From: "users"},
		Join{From: "videos", LocalField: "id", ForeignField: "owner_id", As: "videos"},
		Compute{Field: "total_views", Expr: Sum("videos", "view_count")},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Docs[0]["total_views"])

	res, err = ex.Run(context.Background(),
		Match{From: "videos"},
		Match{Where: Where(Eq("is_published", true))},
	)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "v1", res.Docs[0].String("id"))
}

func TestRun_InvalidPipelines(t *testing.T) {
	ex := NewExecutor(newFakeSource())
	ctx := context.Background()

	_, err := ex.Run(ctx)
	assert.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = ex.Run(ctx, Sort{})
	assert.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = ex.Run(ctx, Match{From: "videos"}, Paginate{Page: 1, Limit: 1}, Sort{})
	assert.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = ex.Run(ctx, Match{From: "videos"},
		Join{From: "users", LocalField: "owner_id", ForeignField: "id", As: "owner", Stages: []Stage{Paginate{}}})
	assert.ErrorIs(t, err, ErrInvalidPipeline)
}

func TestRun_SourceErrorAndCancellation(t *testing.T) {
	src := newFakeSource()
	src.err = apperrors.Unavailable(errors.New("dial tcp"), "find videos")
	ex := NewExecutor(src)

	_, err := ex.Run(context.Background(), Match{From: "videos"})
	assert.True(t, apperrors.Is(err, apperrors.KindStoreUnavailable))

	src.err = nil
	src.data["videos"] = []Doc{{"id": "v1", "created_at": t0}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := ex.Run(ctx, Match{From: "videos"}, Sort{})
	require.Error(t, err)
	assert.Nil(t, res.Docs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilter_Matches(t *testing.T) {
	d := Doc{"id": "v1", "title": "Go Concurrency Patterns", "description": "", "view_count": int64(3), "is_published": true}

	assert.True(t, Where().Matches(d))
	assert.True(t, Where(Eq("view_count", 3)).Matches(d))
	assert.True(t, Where(Eq("is_published", true), In("id", []string{"v0", "v1"})).Matches(d))
	assert.False(t, Where(In("id", nil)).Matches(d))
	assert.True(t, Where(Text("concurrency", "title", "description")).Matches(d))
	assert.False(t, Where(Text("rust", "title", "description")).Matches(d))
	assert.True(t, Where(Text("  ", "title")).Matches(d))
	assert.False(t, Where(Eq("missing", "x")).Matches(d))
}
