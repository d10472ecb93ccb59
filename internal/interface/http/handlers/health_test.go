package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCompositeHealthChecker_NoChecks(t *testing.T) {
	status := NewCompositeHealthChecker("1.0.0").Check(context.Background())

	assert.Equal(t, "ok", status.Status)
	assert.True(t, status.Healthy)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Empty(t, status.Checks)
}

func TestCompositeHealthChecker_FailingCheck(t *testing.T) {
	checker := NewCompositeHealthChecker("1.0.0")
	checker.AddCheck("postgres", NewPingCheck(pingerFunc(func(context.Context) error { return nil })))
	checker.AddCheck("redis", NewPingCheck(pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	})))

	status := checker.Check(context.Background())

	assert.Equal(t, "degraded", status.Status)
	assert.False(t, status.Healthy)
	assert.Equal(t, "Some checks failed: redis", status.Message)
	assert.True(t, status.Checks["postgres"].Healthy)
	assert.Equal(t, "connection refused", status.Checks["redis"].Message)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	checker := NewCompositeHealthChecker("")
	checker.SetTimeout(10 * time.Millisecond)
	checker.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"].Message)
}
