package camera

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestReadRetry_BacksOffAndGivesUp(t *testing.T) {
	var r readRetry

	delay, ok := r.failed()
	assert.True(t, ok)
	assert.Equal(t, readRetryBase, delay)

	delay, _ = r.failed()
	assert.Equal(t, 2*readRetryBase, delay)

	for i := 3; i < maxReadFailure; i++ {
		delay, ok = r.failed()
		assert.True(t, ok)
		assert.LessOrEqual(t, delay, readRetryMax)
	}
	assert.Equal(t, readRetryMax, delay)

	_, ok = r.failed()
	assert.False(t, ok)
}

func TestReadRetry_ResetAfterSuccess(t *testing.T) {
	var r readRetry
	for range 10 {
		r.failed()
	}

	r.reset()

	delay, ok := r.failed()
	assert.True(t, ok)
	assert.Equal(t, readRetryBase, delay)
}

func TestSleepCtx(t *testing.T) {
	assert.True(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepCtx(ctx, time.Hour))
}

func TestStream_ClosedCaptureEndsStream(t *testing.T) {
	c := &Capture{}

	frames := c.Stream(context.Background(), quietLogger())

	select {
	case _, ok := <-frames:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream did not end")
	}
}
