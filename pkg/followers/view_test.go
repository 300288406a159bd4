package followers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// hookLogger returns a debug logger that calls onEntry for every entry it
// writes, from the goroutine that logged it.
func hookLogger(onEntry func(zapcore.Entry)) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(io.Discard),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		onEntry(e)
		return nil
	}))
}

func danny() Result {
	return Result{
		Name:    Name{First: "Danny", Last: "Adams"},
		Picture: Picture{Large: "https://randomuser.me/api/portraits/men/59.jpg"},
		Login:   Login{Username: "danTheMan"},
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not resolve")
	}
}

func TestSummarize(t *testing.T) {
	second := Result{
		Name:    Name{First: "Ada", Last: "Lovelace"},
		Picture: Picture{Large: "https://example.com/ada.jpg"},
		Login:   Login{Username: "ada"},
	}

	got := Summarize(Response{Results: []Result{danny(), second}})

	require.Equal(t, []FollowerSummary{
		{DisplayName: "Danny Adams", AvatarURL: "https://randomuser.me/api/portraits/men/59.jpg", Username: "danTheMan"},
		{DisplayName: "Ada Lovelace", AvatarURL: "https://example.com/ada.jpg", Username: "ada"},
	}, got)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(Response{})
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestViewMountRendersFollowers(t *testing.T) {
	v := NewView(StaticFetcher(Response{Results: []Result{danny(), danny()}}))
	defer v.Destroy()

	var statuses []Status
	v.Subscribe(func(s State) { statuses = append(statuses, s.Status) })

	waitDone(t, v.Mount(context.Background()))

	state := v.State()
	require.Equal(t, StatusReady, state.Status)
	require.Len(t, state.Followers, 2)
	require.Equal(t, "danTheMan", state.Followers[0].Username)
	require.Equal(t, []Status{StatusLoading, StatusReady}, statuses)
}

func TestViewLoadingUntilResolved(t *testing.T) {
	release := make(chan struct{})
	v := NewView(func(ctx context.Context) (Response, error) {
		<-release
		return Response{Results: []Result{danny()}}, nil
	})
	defer v.Destroy()

	done := v.Mount(context.Background())
	require.Equal(t, StatusLoading, v.State().Status)

	close(release)
	waitDone(t, done)
	require.Equal(t, StatusReady, v.State().Status)
}

func TestViewFetchesOncePerMount(t *testing.T) {
	var calls atomic.Int32
	v := NewView(func(ctx context.Context) (Response, error) {
		calls.Add(1)
		return Response{}, nil
	})
	defer v.Destroy()

	first := v.Mount(context.Background())
	second := v.Mount(context.Background())
	waitDone(t, first)
	waitDone(t, second)
	v.Mount(context.Background())

	require.Equal(t, int32(1), calls.Load())

	v.Unmount()
	waitDone(t, v.Mount(context.Background()))
	require.Equal(t, int32(2), calls.Load())
}

func TestViewFetchFailure(t *testing.T) {
	boom := errors.New("boom")
	v := NewView(func(ctx context.Context) (Response, error) {
		return Response{}, boom
	})
	defer v.Destroy()

	waitDone(t, v.Mount(context.Background()))

	state := v.State()
	require.Equal(t, StatusFailed, state.Status)
	require.ErrorIs(t, state.Err, boom)
	require.Empty(t, state.Followers)
}

func TestViewUnmountBeforeResolve(t *testing.T) {
	release := make(chan struct{})
	v := NewView(func(ctx context.Context) (Response, error) {
		<-release
		return Response{Results: []Result{danny()}}, nil
	})
	defer v.Destroy()

	done := v.Mount(context.Background())

	updates := 0
	v.Subscribe(func(State) { updates++ })

	v.Unmount()
	close(release)
	waitDone(t, done)

	require.Equal(t, 0, updates)
	require.Equal(t, StatusLoading, v.State().Status)
}

func TestViewUnmountAfterFetchReturns(t *testing.T) {
	var v *View
	log := hookLogger(func(e zapcore.Entry) {
		if e.Message == "followers resolved" {
			v.Unmount()
		}
	})
	v = NewView(StaticFetcher(Response{Results: []Result{danny()}}), WithLogger(log))
	defer v.Destroy()

	done := v.Mount(context.Background())
	waitDone(t, done)

	require.Equal(t, StatusLoading, v.State().Status)
	require.Empty(t, v.State().Followers)
}

func TestViewRemountAfterFetchReturnsKeepsNewMount(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (Response, error) {
		if calls.Add(1) == 1 {
			return Response{Results: []Result{danny()}}, nil
		}
		<-release
		return Response{}, nil
	}

	var v *View
	var once sync.Once
	var second <-chan struct{}
	log := hookLogger(func(e zapcore.Entry) {
		if e.Message != "followers resolved" {
			return
		}
		once.Do(func() {
			v.Unmount()
			second = v.Mount(context.Background())
		})
	})
	v = NewView(fetch, WithLogger(log))
	defer v.Destroy()

	waitDone(t, v.Mount(context.Background()))
	require.Equal(t, StatusLoading, v.State().Status, "first mount's result overwrote the new mount")

	close(release)
	waitDone(t, second)
	state := v.State()
	require.Equal(t, StatusReady, state.Status)
	require.Empty(t, state.Followers)
	require.Equal(t, int32(2), calls.Load())
}

func TestViewUnmountCancelsContext(t *testing.T) {
	v := NewView(func(ctx context.Context) (Response, error) {
		<-ctx.Done()
		return Response{}, ctx.Err()
	})
	defer v.Destroy()

	done := v.Mount(context.Background())
	v.Unmount()
	waitDone(t, done)
}

func TestStateMarshalJSON(t *testing.T) {
	data, err := json.Marshal(State{Status: StatusFailed, Err: errors.New("offline")})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"failed","error":"offline"}`, string(data))
}

func TestFixtureFetcherJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "followers.json")
	doc := `{"results":[{"name":{"first":"Danny","last":"Adams"},"picture":{"large":"https://randomuser.me/api/portraits/men/59.jpg"},"login":{"username":"danTheMan"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	resp, err := FixtureFetcher(path)(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Result{danny()}, resp.Results)
}

func TestFixtureFetcherJSONEscapedSlashes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "followers.json")
	doc := `
	{
		"results": [{
			"name": {"first": "Danny", "last": "Adams"},
			"picture": {"large": "https:\/\/randomuser.me\/api\/portraits\/men\/59.jpg"},
			"login": {"username": "dan\/the"}
		}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	resp, err := FixtureFetcher(path)(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "https://randomuser.me/api/portraits/men/59.jpg", resp.Results[0].Picture.Large)
	require.Equal(t, "dan/the", resp.Results[0].Login.Username)
}

func TestFixtureFetcherYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "followers.yaml")
	doc := `results:
  - name: {first: Danny, last: Adams}
    picture: {large: "https://randomuser.me/api/portraits/men/59.jpg"}
    login: {username: danTheMan}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	resp, err := FixtureFetcher(path)(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Result{danny()}, resp.Results)
}

func TestFixtureFetcherMissingFile(t *testing.T) {
	_, err := FixtureFetcher(filepath.Join(t.TempDir(), "missing.json"))(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithTimeout(t *testing.T) {
	slow := func(ctx context.Context) (Response, error) {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}

	_, err := WithTimeout(slow, 10*time.Millisecond)(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
