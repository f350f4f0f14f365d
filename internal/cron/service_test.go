package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/istochnik/delivery-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return !l.acquired, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunCycleExecutesJobsInOrder(t *testing.T) {
	var order []string
	first := &orderedJob{name: "first", order: &order}
	second := &orderedJob{name: "second", order: &order}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second),
		Lock:     &fakeLock{},
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, []string{"first", "second"}, order)
}

type orderedJob struct {
	name  string
	order *[]string
}

func (j *orderedJob) Name() string { return j.name }

func (j *orderedJob) Run(ctx context.Context) error {
	*j.order = append(*j.order, j.name)
	return nil
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &fakeJob{name: "noop"}
	lock := &fakeLock{acquired: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 0, job.runs)
	assert.Equal(t, 0, lock.releases)
}

func TestRunCycleContinuesPastFailingJob(t *testing.T) {
	failing := &fakeJob{name: "broken", err: errors.New("boom")}
	next := &fakeJob{name: "next"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, next),
		Lock:     &fakeLock{},
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, next.runs)
}

func TestRunCycleReleasesLock(t *testing.T) {
	lock := &fakeLock{}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(&fakeJob{name: "noop"}),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, lock.acquires)
	assert.Equal(t, 1, lock.releases)
}

func TestNewServiceDefaultsInterval(t *testing.T) {
	svc, err := NewService(ServiceParams{Logger: testLogger(), Lock: &fakeLock{}})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, svc.interval)
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: testLogger()})
	require.Error(t, err)
	assert.Equal(t, "lock required", err.Error())
}

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeStore()
	lock, err := NewRedisLock(store, "aqua:lock:cron", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := NewRedisLock(store, "aqua:lock:cron", time.Minute)
	require.NoError(t, err)
	ok, err = other.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(context.Background()))
	ok, err = other.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseIgnoresForeignOwner(t *testing.T) {
	store := newFakeStore()
	lock, err := NewRedisLock(store, "aqua:lock:cron", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate expiry and takeover by another worker.
	store.values["aqua:lock:cron"] = "someone-else"
	require.NoError(t, lock.Release(context.Background()))
	assert.Equal(t, "someone-else", store.values["aqua:lock:cron"])
}
