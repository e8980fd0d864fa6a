package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

func processed(names ...string) []Document {
	out := docs(names...)
	for i := range out {
		out[i] = out[i].succeeded(5, 50)
	}
	return out
}

func TestCommitStoresUnderGeneratedKeys(t *testing.T) {
	store := &fakeStore{}
	repo := documents.NewMemoryRepo()
	c := &Committer{Store: store, Records: repo}

	report := c.Commit(context.Background(), "user-1", processed("Jane Doe.PDF", "Jane Doe.PDF"))
	require.Len(t, report.Committed, 2)
	assert.Empty(t, report.Failed)

	k1, k2 := report.Committed[0].StorageKey, report.Committed[1].StorageKey
	assert.NotEqual(t, k1, k2)
	for _, key := range []string{k1, k2} {
		assert.True(t, strings.HasPrefix(key, "cvs/"))
		assert.True(t, strings.HasSuffix(key, ".pdf"))
		assert.NotContains(t, key, "Jane")
	}
	assert.Equal(t, StateCommitted, report.Committed[0].State)

	rec, err := repo.GetByPath(context.Background(), "user-1", k1)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe.PDF", rec.FileName)
	assert.Equal(t, "application/pdf", rec.ContentType)
	assert.EqualValues(t, len("Jane Doe.PDF"), rec.FileSize)
	assert.False(t, rec.UploadDate.IsZero())
}

func TestCommitLogsOrphans(t *testing.T) {
	prev := telemetry.L()
	t.Cleanup(func() { telemetry.SetLogger(prev) })
	core, logs := observer.New(zapcore.DebugLevel)
	telemetry.SetLogger(zap.New(core))

	store := &fakeStore{}
	repo := &failingRepo{MemoryRepo: documents.NewMemoryRepo(), fail: map[string]bool{"b.pdf": true}}
	c := &Committer{Store: store, Records: repo, MaxInFlight: 1}

	report := c.Commit(context.Background(), "user-1", processed("a.pdf", "b.pdf"))
	require.Len(t, report.Committed, 1)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "b.pdf", report.Failed[0].FileName)
	assert.Equal(t, "object", report.Failed[0].Orphan)

	orphans := logs.FilterMessage("intake.commit.orphan").All()
	require.Len(t, orphans, 1)
	assert.Equal(t, "object", orphans[0].ContextMap()["side"])
	assert.Equal(t, report.Failed[0].Key, orphans[0].ContextMap()["key"])
}

func TestCommitRecordOrphanWhenUploadFails(t *testing.T) {
	store := &fakeStore{err: errors.New("bucket unavailable")}
	repo := documents.NewMemoryRepo()
	c := &Committer{Store: store, Records: repo}

	report := c.Commit(context.Background(), "user-1", processed("a.pdf"))
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "record", report.Failed[0].Orphan)
	assert.Empty(t, report.Committed)
}

func TestCommitRejectsUnprocessed(t *testing.T) {
	c := &Committer{Store: &fakeStore{}, Records: documents.NewMemoryRepo()}
	report := c.Commit(context.Background(), "user-1", docs("a.pdf"))
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0].Err, ErrNotProcessed)
	assert.Empty(t, report.Failed[0].Orphan)
}
