package rips

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/backend"
	"github.com/hsiuhsiu/rips-go/pkg/rips/logging"
)

func TestInitOptions(t *testing.T) {
	var zero InitOptions
	assert.Equal(t, DefaultProgramName, zero.Name())

	named := zero.WithName("thumbnailer")
	assert.Equal(t, "thumbnailer", named.Name())
	assert.Equal(t, DefaultProgramName, zero.Name(), "builder must not mutate the receiver")

	leaky := named.WithLeakChecks(true)
	on, ok := leaky.leakChecks.Get()
	assert.True(t, ok)
	assert.True(t, on)
	_, ok = named.leakChecks.Get()
	assert.False(t, ok)
}

func TestInitGuardRunsOnce(t *testing.T) {
	var (
		g     initGuard
		calls atomic.Int32
		seen  atomic.Value
		wg    sync.WaitGroup
	)

	start := func(opts InitOptions) error {
		calls.Add(1)
		seen.Store(opts.Name())
		return nil
	}

	const callers = 32
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts := InitOptions{}
			if i%2 == 0 {
				opts = opts.WithName("custom").WithLeakChecks(true)
			}
			errs[i] = g.ensure(opts, start)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, []string{"custom", DefaultProgramName}, seen.Load())
	for _, err := range errs {
		assert.NoError(t, err)
	}

	require.NoError(t, g.ensure(InitOptions{}.WithName("late"), start))
	assert.Equal(t, int32(1), calls.Load())
}

func TestInitGuardFailureIsSticky(t *testing.T) {
	var g initGuard
	calls := 0
	boom := &Error{Kind: KindNative, Message: "vips_init: no", HasMessage: true}

	start := func(InitOptions) error {
		calls++
		return boom
	}

	assert.Same(t, boom, g.ensure(InitOptions{}, start))
	assert.Same(t, boom, g.ensure(InitOptions{}, start))
	assert.Equal(t, 1, calls)

	stopped := false
	g.shutdown(func() { stopped = true })
	assert.False(t, stopped, "nothing to tear down after a failed init")
}

func TestInitGuardShutdown(t *testing.T) {
	t.Run("after init", func(t *testing.T) {
		var g initGuard
		require.NoError(t, g.ensure(InitOptions{}, func(InitOptions) error { return nil }))

		stops := 0
		g.shutdown(func() { stops++ })
		g.shutdown(func() { stops++ })
		assert.Equal(t, 1, stops)

		err := g.ensure(InitOptions{}, func(InitOptions) error { return nil })
		assert.True(t, errors.Is(err, ErrShutdown))
		assert.Equal(t, KindOpaque, KindOf(err))
	})

	t.Run("before init", func(t *testing.T) {
		var g initGuard
		stops := 0
		g.shutdown(func() { stops++ })
		assert.Equal(t, 0, stops)

		started := false
		err := g.ensure(InitOptions{}, func(InitOptions) error {
			started = true
			return nil
		})
		assert.ErrorIs(t, err, ErrShutdown)
		assert.False(t, started)
	})
}

func TestInitializeRejectsNulName(t *testing.T) {
	err := InitializeWithOptions(InitOptions{}.WithName("ri\x00ps"))
	require.Error(t, err)
	assert.Equal(t, KindNul, KindOf(err))
	assert.Equal(t, "nul byte found in provided data at position: 2", err.Error())
}

func TestGlibLevel(t *testing.T) {
	tests := []struct {
		name  string
		flags int
		want  logLevel
	}{
		{"critical", backend.LogLevelCritical, levelError},
		{"warning", backend.LogLevelWarning, levelWarn},
		{"message", backend.LogLevelMessage, levelInfo},
		{"info", backend.LogLevelInfo, levelInfo},
		{"debug", backend.LogLevelDebug, levelDebug},
		{"unknown bits", 1 << 12, levelDebug},
		{"critical with recursion flag", backend.LogLevelCritical | 1, levelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, glibLevel(tt.flags))
		})
	}
}

func TestForwardNativeLog(t *testing.T) {
	prev := activeLogger.Load()
	t.Cleanup(func() { activeLogger.Store(prev) })

	base, hook := logrustest.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	setLogger(logging.NewLogrus(base))

	forwardNativeLog("VIPS", backend.LogLevelWarning, "vips_image_new: error")
	forwardNativeLog("VIPS", backend.LogLevelDebug, "threadpool started")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "vips_image_new: error", entries[0].Message)
	assert.Equal(t, "VIPS", entries[0].Data["domain"])
	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
}

func TestInitializeAfterFirstRunIgnoresOptions(t *testing.T) {
	ok := func(InitOptions) error { return nil }

	t.Run("nul name before init", func(t *testing.T) {
		var g initGuard
		err := g.initialize(InitOptions{}.WithName("x\x00y"), ok)
		assert.Equal(t, KindNul, KindOf(err))
		assert.False(t, g.ran.Load(), "a rejected name must not consume the gate")

		require.NoError(t, g.initialize(InitOptions{}.WithName("valid"), ok))
		assert.True(t, g.started.Load())
	})

	t.Run("nul name after init", func(t *testing.T) {
		var g initGuard
		require.NoError(t, g.initialize(InitOptions{}, ok))
		assert.NoError(t, g.initialize(InitOptions{}.WithName("x\x00y"), ok))
	})

	t.Run("nul name after failed init", func(t *testing.T) {
		var g initGuard
		boom := opaqueError(ErrNotBuilt)
		assert.Same(t, boom, g.initialize(InitOptions{}, func(InitOptions) error { return boom }))
		assert.Same(t, boom, g.initialize(InitOptions{}.WithName("x\x00y"), ok))
	})
}

func TestShutdownFencesExistingImages(t *testing.T) {
	var g initGuard
	require.NoError(t, g.ensure(InitOptions{}, func(InitOptions) error { return nil }))

	img := &Image{g: &g}
	_, err := img.Resize(2)
	require.ErrorIs(t, err, ErrClosed)

	g.shutdown(func() {})

	_, err = img.Resize(2)
	assert.ErrorIs(t, err, ErrShutdown)
	assert.Equal(t, KindOpaque, KindOf(err))

	_, err = img.Crop(0, 0, 1, 1)
	assert.ErrorIs(t, err, ErrShutdown)
	_, err = img.ToBuffer(".png")
	assert.ErrorIs(t, err, ErrShutdown)
	_, err = img.ToBytes()
	assert.ErrorIs(t, err, ErrShutdown)
	assert.ErrorIs(t, img.WriteToFile("out.png"), ErrShutdown)
	assert.Equal(t, 0, img.Width())
	assert.NoError(t, img.Close())
}

func TestShutdownWaitsForInflightCalls(t *testing.T) {
	var g initGuard
	require.NoError(t, g.ensure(InitOptions{}, func(InitOptions) error { return nil }))

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = g.enter(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	var stopped atomic.Bool
	done := make(chan struct{})
	go func() {
		g.shutdown(func() { stopped.Store(true) })
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("shutdown returned while a native call was in flight")
	case <-time.After(20 * time.Millisecond):
	}
	assert.False(t, stopped.Load())

	close(release)
	<-done
	assert.True(t, stopped.Load())
	assert.ErrorIs(t, g.enter(func() error { return nil }), ErrShutdown)
}
