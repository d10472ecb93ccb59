package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(3)

	for _, text := range []string{"a", "b", "c", "d"} {
		require.NoError(t, h.Record(ctx, NewEntry("cycle", KindStatus, text, time.Now())))
	}

	assert.Equal(t, 3, h.Len())

	all, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Text)
	assert.Equal(t, "d", all[2].Text)

	last, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "c", last[0].Text)
}

func TestHistory_DefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistoryCapacity, h.capacity)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Обновлений по домашкам пока нет :(")
	b := Fingerprint("Обновлений по домашкам пока нет :(")
	c := Fingerprint("Ошибка! Попробуйте позже.")

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewEntry(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	e := NewEntry("c1", KindNoUpdates, "text", at)

	assert.Equal(t, "c1", e.CycleID)
	assert.Equal(t, KindNoUpdates, e.Kind)
	assert.Equal(t, Fingerprint("text"), e.Fingerprint)
	assert.Equal(t, time.UTC, e.SentAt.Location())
	assert.True(t, e.Kind.IsValid())
	assert.False(t, Kind("other").IsValid())
}

type failingJournal struct{ calls int }

func (f *failingJournal) Record(context.Context, Entry) error {
	f.calls++
	return errors.New("db down")
}

func (f *failingJournal) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

func TestTee_RecordsEverywhere(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(10)
	bad := &failingJournal{}
	tee := Tee{h, bad}

	err := tee.Record(ctx, NewEntry("c", KindError, "x", time.Now()))
	assert.Error(t, err)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 1, bad.calls)

	recent, err := tee.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
