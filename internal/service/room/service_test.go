package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/catalog"
	roomrepo "github.com/sharetube/jukebox/internal/repository/room"
	roomredis "github.com/sharetube/jukebox/internal/repository/room/redis"
	"github.com/sharetube/jukebox/pkg/events"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu         sync.Mutex
	tracks     map[string]catalog.Track
	rooms      map[string]catalog.Room
	getManyErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks: make(map[string]catalog.Track),
		rooms:  make(map[string]catalog.Room),
	}
}

func (f *fakeCatalog) GetMany(_ context.Context, ids []string) (map[string]catalog.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getManyErr != nil {
		return nil, f.getManyErr
	}

	res := make(map[string]catalog.Track)
	for _, id := range ids {
		if t, ok := f.tracks[id]; ok {
			res[id] = t
		}
	}
	return res, nil
}

func (f *fakeCatalog) CreateIfAbsent(_ context.Context, track *catalog.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tracks[track.Id]; !ok {
		f.tracks[track.Id] = *track
	}
	return nil
}

func (f *fakeCatalog) hasTrack(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tracks[id]
	return ok
}

func (f *fakeCatalog) CreateRoom(_ context.Context, room *catalog.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.Id] = *room
	return nil
}

func (f *fakeCatalog) GetRoom(_ context.Context, roomId string) (catalog.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomId]
	if !ok {
		return catalog.Room{}, catalog.ErrRoomNotFound
	}
	return r, nil
}

func (f *fakeCatalog) RemoveRoom(_ context.Context, roomId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomId]; !ok {
		return catalog.ErrRoomNotFound
	}
	delete(f.rooms, roomId)
	return nil
}

type fakeVideoData struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	hang  map[string]bool
}

func newFakeVideoData() *fakeVideoData {
	return &fakeVideoData{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
		hang:  make(map[string]bool),
	}
}

func (f *fakeVideoData) Get(ctx context.Context, id string) (*ytvideodata.VideoData, error) {
	f.mu.Lock()
	f.calls[id]++
	fail, hang := f.fail[id], f.hang[id]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail {
		return nil, errors.New("lookup failed")
	}

	return &ytvideodata.VideoData{
		Title:          "title-" + id,
		SmallThumbnail: "small-" + id,
		BigThumbnail:   "big-" + id,
	}, nil
}

func (f *fakeVideoData) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) types() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]events.EventType, 0, len(f.events))
	for _, e := range f.events {
		res = append(res, e.Type)
	}
	return res
}

type testEnv struct {
	svc       *service
	redis     *miniredis.Miniredis
	catalog   *fakeCatalog
	videoData *fakeVideoData
	publisher *fakePublisher
	clock     time.Time
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func newTestEnv(t *testing.T, playlistLimit int) *testEnv {
	t.Helper()
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	env := &testEnv{
		redis:     s,
		catalog:   newFakeCatalog(),
		videoData: newFakeVideoData(),
		publisher: &fakePublisher{},
		clock:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	svc, err := NewService(
		roomredis.NewRepo(rc, time.Hour, slog.Default()),
		env.catalog,
		env.videoData,
		env.publisher,
		&Config{
			Secret:            "test-secret",
			PlaylistLimit:     playlistLimit,
			MetadataTimeout:   100 * time.Millisecond,
			MetadataCacheSize: 128,
		},
		slog.Default(),
	)
	require.NoError(t, err)
	svc.now = func() time.Time { return env.clock }
	env.svc = svc

	return env
}

func (e *testEnv) createRoom(t *testing.T) CreateRoomResponse {
	t.Helper()
	resp, err := e.svc.CreateRoom(context.Background(), &CreateRoomParams{AdminName: "alice"})
	require.NoError(t, err)
	return resp
}

func trackIds(queue []Track) []string {
	ids := make([]string, 0, len(queue))
	for _, t := range queue {
		ids = append(ids, t.Id)
	}
	return ids
}

func trackVotes(queue []Track) []int {
	votes := make([]int, 0, len(queue))
	for _, t := range queue {
		votes = append(votes, t.Votes)
	}
	return votes
}

func TestAddTrackSnapshot(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	resp, err := env.svc.AddTrack(ctx, &VoteParams{SenderId: "m1", RoomId: r.RoomId, TrackId: "abc12345678"})
	require.NoError(t, err)
	assert.True(t, resp.Added)
	assert.Equal(t, []Track{{
		Id:             "abc12345678",
		Title:          "title-abc12345678",
		SmallThumbnail: "small-abc12345678",
		BigThumbnail:   "big-abc12345678",
		Votes:          1,
	}}, resp.Queue)
}

func TestUpvoteOutranksEarlierTrack(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "trk1"})
	require.NoError(t, err)
	env.advance(time.Second)
	_, err = env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "trk2"})
	require.NoError(t, err)

	resp, err := env.svc.Upvote(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "trk2"})
	require.NoError(t, err)
	assert.False(t, resp.Added)
	assert.Equal(t, 2, resp.Votes)
	assert.Equal(t, []string{"trk2", "trk1"}, trackIds(resp.Queue))
	assert.Equal(t, []int{2, 1}, trackVotes(resp.Queue))
}

func TestDownvoteFloorsAtZero(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "early"})
	require.NoError(t, err)
	env.advance(time.Minute)
	_, err = env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "late"})
	require.NoError(t, err)
	env.advance(time.Minute)
	_, err = env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "liked"})
	require.NoError(t, err)

	var resp VoteResponse
	for _, id := range []string{"late", "early", "late", "early"} {
		resp, err = env.svc.Downvote(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
	}

	assert.Equal(t, 0, resp.Votes)
	assert.Equal(t, []string{"liked", "early", "late"}, trackIds(resp.Queue))
	assert.Equal(t, []int{1, 0, 0}, trackVotes(resp.Queue))
}

func TestFirstTouchSeedsOneVote(t *testing.T) {
	env := newTestEnv(t, 50)
	r := env.createRoom(t)

	resp, err := env.svc.Downvote(context.Background(), &VoteParams{RoomId: r.RoomId, TrackId: "fresh"})
	require.NoError(t, err)
	assert.True(t, resp.Added)
	assert.Equal(t, 1, resp.Votes)
}

func TestSnapshotIsIdempotent(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
		env.advance(time.Second)
	}

	first, err := env.svc.GetRoomTracks(ctx, r.RoomId)
	require.NoError(t, err)
	second, err := env.svc.GetRoomTracks(ctx, r.RoomId)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c"}, trackIds(first))
}

func TestEmptyQueueSkipsMetadata(t *testing.T) {
	env := newTestEnv(t, 50)
	r := env.createRoom(t)

	queue, err := env.svc.GetRoomTracks(context.Background(), r.RoomId)
	require.NoError(t, err)
	assert.Empty(t, queue)
	assert.NotNil(t, queue)
	assert.Empty(t, env.videoData.calls)
}

func TestQueueLimit(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()
	r := env.createRoom(t)

	for _, id := range []string{"a", "b"} {
		_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
	}

	_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "c"})
	assert.ErrorIs(t, err, ErrQueueLimitReached)

	_, err = env.svc.Upvote(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "a"})
	assert.NoError(t, err)
}

func TestVoteRejectsInvalidTrackId(t *testing.T) {
	env := newTestEnv(t, 50)
	r := env.createRoom(t)

	for _, id := range []string{"", "has space", "semi;colon"} {
		_, err := env.svc.AddTrack(context.Background(), &VoteParams{RoomId: r.RoomId, TrackId: id})
		assert.ErrorIs(t, err, ErrInvalidInput, "track id %q", id)
	}
}

func TestMetadataFailureIsIsolated(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)
	env.videoData.fail["broken"] = true
	env.videoData.hang["slow"] = true

	for _, id := range []string{"first", "broken", "slow", "last"} {
		_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
		env.advance(time.Second)
	}

	queue, err := env.svc.GetRoomTracks(ctx, r.RoomId)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "broken", "slow", "last"}, trackIds(queue))

	assert.Equal(t, "title-first", queue[0].Title)
	assert.Equal(t, "title-last", queue[3].Title)

	for _, i := range []int{1, 2} {
		small, big := ytvideodata.Thumbnails(queue[i].Id)
		assert.Equal(t, queue[i].Id, queue[i].Title)
		assert.Equal(t, small, queue[i].SmallThumbnail)
		assert.Equal(t, big, queue[i].BigThumbnail)
	}

	assert.False(t, env.catalog.hasTrack("broken"))
}

func TestMetadataIsPersistedAndCached(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "song"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return env.catalog.hasTrack("song") }, time.Second, 10*time.Millisecond)

	_, err = env.svc.Upvote(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "song"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.videoData.callCount("song"))
}

func TestStoredMetadataSkipsLookup(t *testing.T) {
	env := newTestEnv(t, 50)
	r := env.createRoom(t)
	env.catalog.tracks["known"] = catalog.Track{Id: "known", Title: "Known Song"}

	resp, err := env.svc.AddTrack(context.Background(), &VoteParams{RoomId: r.RoomId, TrackId: "known"})
	require.NoError(t, err)
	assert.Equal(t, "Known Song", resp.Queue[0].Title)
	assert.Equal(t, 0, env.videoData.callCount("known"))
}

func TestStoreFailureFallsBackToLookup(t *testing.T) {
	env := newTestEnv(t, 50)
	r := env.createRoom(t)
	env.catalog.getManyErr = errors.New("db down")

	resp, err := env.svc.AddTrack(context.Background(), &VoteParams{RoomId: r.RoomId, TrackId: "song"})
	require.NoError(t, err)
	assert.Equal(t, "title-song", resp.Queue[0].Title)
}

func TestJoinEstimatesPosition(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	_, err := env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "x", Position: 42})
	require.NoError(t, err)

	env.advance(3 * time.Second)
	resp, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId})
	require.NoError(t, err)
	require.NotNil(t, resp.EstimatedPosition)
	assert.InDelta(t, 45.0, *resp.EstimatedPosition, 0.01)
	require.NotNil(t, resp.CurrentTrackId)
	assert.Equal(t, "x", *resp.CurrentTrackId)
}

func TestJoinWithoutPlayback(t *testing.T) {
	env := newTestEnv(t, 50)
	r := env.createRoom(t)

	resp, err := env.svc.JoinRoom(context.Background(), &JoinRoomParams{RoomId: r.RoomId})
	require.NoError(t, err)
	assert.Nil(t, resp.EstimatedPosition)
	assert.Nil(t, resp.CurrentTrackId)
	assert.Empty(t, resp.Queue)
	assert.False(t, resp.IsAdmin)
	assert.NotEmpty(t, resp.MemberId)
	assert.NotEmpty(t, resp.AuthToken)
}

func TestJoinRestoresMemberFromToken(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)
	other := env.createRoom(t)

	admin, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId, AuthToken: r.AuthToken})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, r.MemberId, admin.MemberId)

	member, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId})
	require.NoError(t, err)
	back, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId, AuthToken: member.AuthToken})
	require.NoError(t, err)
	assert.Equal(t, member.MemberId, back.MemberId)
	assert.False(t, back.IsAdmin)

	foreign, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId, AuthToken: other.AuthToken})
	require.NoError(t, err)
	assert.NotEqual(t, other.MemberId, foreign.MemberId)
	assert.False(t, foreign.IsAdmin)

	garbage, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId, AuthToken: "not-a-token"})
	require.NoError(t, err)
	assert.False(t, garbage.IsAdmin)
}

func TestJoinUnknownRoom(t *testing.T) {
	env := newTestEnv(t, 50)

	_, err := env.svc.JoinRoom(context.Background(), &JoinRoomParams{RoomId: "Missing1"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = env.svc.JoinRoom(context.Background(), &JoinRoomParams{RoomId: "bad id!"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHeartbeatReorder(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "top"})
	require.NoError(t, err)
	_, err = env.svc.Upvote(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "top"})
	require.NoError(t, err)
	env.advance(time.Second)
	_, err = env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "playing"})
	require.NoError(t, err)

	resp, err := env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "playing", Position: 1})
	require.NoError(t, err)
	assert.True(t, resp.ReorderRequired)
	assert.Equal(t, []string{"playing", "top"}, trackIds(resp.Queue))

	resp, err = env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "playing", Position: 2})
	require.NoError(t, err)
	assert.False(t, resp.ReorderRequired)
	assert.Nil(t, resp.Queue)

	resp, err = env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "top", Position: 0})
	require.NoError(t, err)
	assert.True(t, resp.ReorderRequired)
	assert.Equal(t, []string{"top", "playing"}, trackIds(resp.Queue))
}

func TestNonAdminIsDenied(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	member, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId})
	require.NoError(t, err)
	_, err = env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "song"})
	require.NoError(t, err)

	err = env.svc.Seek(ctx, &SeekParams{SenderId: member.MemberId, RoomId: r.RoomId, Position: 10})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = env.svc.Control(ctx, &ControlParams{SenderId: member.MemberId, RoomId: r.RoomId, Action: ActionPause})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: member.MemberId, RoomId: r.RoomId, TrackId: "song"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.svc.Skip(ctx, &SkipParams{SenderId: member.MemberId, RoomId: r.RoomId})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = env.svc.EndRoom(ctx, &EndRoomParams{SenderId: member.MemberId, RoomId: r.RoomId})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	queue, err := env.svc.GetRoomTracks(ctx, r.RoomId)
	require.NoError(t, err)
	assert.Equal(t, []string{"song"}, trackIds(queue))
}

func TestControlValidation(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	assert.NoError(t, env.svc.Control(ctx, &ControlParams{SenderId: r.MemberId, RoomId: r.RoomId, Action: ActionPlay, Position: 3}))
	assert.ErrorIs(t, env.svc.Control(ctx, &ControlParams{SenderId: r.MemberId, RoomId: r.RoomId, Action: "rewind"}), ErrInvalidInput)
	assert.ErrorIs(t, env.svc.Seek(ctx, &SeekParams{SenderId: r.MemberId, RoomId: r.RoomId, Position: -1}), ErrInvalidInput)
}

func TestSkipRemovesPlayingTrack(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	for _, id := range []string{"head", "playing", "next"} {
		_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
		env.advance(time.Second)
	}
	_, err := env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "playing", Position: 30})
	require.NoError(t, err)

	resp, err := env.svc.Skip(ctx, &SkipParams{SenderId: r.MemberId, RoomId: r.RoomId})
	require.NoError(t, err)
	assert.Equal(t, "playing", resp.SkippedTrackId)
	assert.Equal(t, []string{"head", "next"}, trackIds(resp.Queue))

	join, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId})
	require.NoError(t, err)
	assert.Nil(t, join.EstimatedPosition)
}

func TestSkipWithoutPlaybackRemovesHead(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	for _, id := range []string{"head", "next"} {
		_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
		env.advance(time.Second)
	}

	resp, err := env.svc.Skip(ctx, &SkipParams{SenderId: r.MemberId, RoomId: r.RoomId})
	require.NoError(t, err)
	assert.Equal(t, "head", resp.SkippedTrackId)
	assert.Equal(t, []string{"next"}, trackIds(resp.Queue))

	resp, err = env.svc.Skip(ctx, &SkipParams{SenderId: r.MemberId, RoomId: r.RoomId})
	require.NoError(t, err)
	resp, err = env.svc.Skip(ctx, &SkipParams{SenderId: r.MemberId, RoomId: r.RoomId})
	require.NoError(t, err)
	assert.Equal(t, "", resp.SkippedTrackId)
	assert.Empty(t, resp.Queue)
}

func TestTrackCompleted(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	for _, id := range []string{"done", "next"} {
		_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: id})
		require.NoError(t, err)
		env.advance(time.Second)
	}
	_, err := env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "done", Position: 200})
	require.NoError(t, err)

	resp, err := env.svc.TrackCompleted(ctx, &TrackCompletedParams{RoomId: r.RoomId, TrackId: "done"})
	require.NoError(t, err)
	assert.True(t, resp.Removed)
	assert.Equal(t, []string{"next"}, trackIds(resp.Queue))

	resp, err = env.svc.TrackCompleted(ctx, &TrackCompletedParams{RoomId: r.RoomId, TrackId: "done"})
	require.NoError(t, err)
	assert.False(t, resp.Removed)

	join, err := env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId})
	require.NoError(t, err)
	assert.Nil(t, join.EstimatedPosition)
}

func TestEndRoom(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx := context.Background()
	r := env.createRoom(t)

	_, err := env.svc.AddTrack(ctx, &VoteParams{RoomId: r.RoomId, TrackId: "song"})
	require.NoError(t, err)
	_, err = env.svc.Heartbeat(ctx, &HeartbeatParams{SenderId: r.MemberId, RoomId: r.RoomId, TrackId: "song", Position: 1})
	require.NoError(t, err)

	require.NoError(t, env.svc.EndRoom(ctx, &EndRoomParams{SenderId: r.MemberId, RoomId: r.RoomId}))
	assert.False(t, env.redis.Exists("room:"+r.RoomId+":queue"))
	assert.False(t, env.redis.Exists("room:"+r.RoomId+":playback"))

	_, err = env.svc.JoinRoom(ctx, &JoinRoomParams{RoomId: r.RoomId})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	assert.Equal(t, []events.EventType{
		events.EventTypeRoomCreated,
		events.EventTypeTrackAdded,
		events.EventTypePlaybackChanged,
		events.EventTypeRoomEnded,
	}, env.publisher.types())
}

func TestCreateRoomValidation(t *testing.T) {
	env := newTestEnv(t, 50)

	_, err := env.svc.CreateRoom(context.Background(), &CreateRoomParams{AdminName: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPromote(t *testing.T) {
	entries := func() []roomrepo.QueueEntry {
		return []roomrepo.QueueEntry{{TrackId: "a", Score: 3}, {TrackId: "b", Score: 2}, {TrackId: "c", Score: 1}}
	}
	ids := func(entries []roomrepo.QueueEntry) []string {
		res := make([]string, 0, len(entries))
		for _, e := range entries {
			res = append(res, e.TrackId)
		}
		return res
	}

	assert.Equal(t, []string{"c", "a", "b"}, ids(promote(entries(), "c")))
	assert.Equal(t, []string{"b", "a", "c"}, ids(promote(entries(), "b")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(promote(entries(), "a")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(promote(entries(), "missing")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(promote(entries(), "")))
}
