package intake

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/preview"
)

func zipOf(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte("content of " + n))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestWorkspaceAddExpandsArchives(t *testing.T) {
	reg := preview.NewRegistry(time.Minute)
	ws := NewWorkspace(reg)

	res := ws.Add("u1", []Upload{
		{Name: "batch.zip", MediaType: "application/zip", Data: zipOf(t, "resume.pdf", "._resume.pdf", "notes.txt")},
		{Name: "single.docx", Data: []byte("docx")},
		{Name: "photo.png", Data: []byte("png")},
		{Name: "broken.zip", Data: []byte("nope")},
	})

	require.Len(t, res.Added, 3)
	assert.Equal(t, "resume.pdf", res.Added[0].Name)
	assert.Equal(t, "batch.zip", res.Added[0].Source)
	assert.Equal(t, "notes.txt", res.Added[1].Name)
	assert.Equal(t, "application/msword", res.Added[2].MediaType)
	for _, d := range res.Added {
		assert.Equal(t, StateSelected, d.State)
		require.NotNil(t, d.Progress)
		assert.Equal(t, 0, *d.Progress)
		assert.NotEmpty(t, d.PreviewID)
	}
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "photo.png", res.Skipped[0].FileName)
	assert.Equal(t, "broken.zip", res.Skipped[1].FileName)
	assert.Equal(t, 3, reg.Len())
	assert.Len(t, ws.List("u1"), 3)
	assert.Empty(t, ws.List("u2"))
}

func TestWorkspaceApplyAfterRemoveIsDiscarded(t *testing.T) {
	reg := preview.NewRegistry(time.Minute)
	ws := NewWorkspace(reg)
	res := ws.Add("u1", []Upload{{Name: "a.pdf", Data: []byte("a")}, {Name: "b.pdf", Data: []byte("b")}})
	a, b := res.Added[0], res.Added[1]

	snapshot := ws.List("u1")
	removed, ok := ws.Remove("u1", a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, removed.ID)
	assert.Len(t, snapshot, 2, "earlier copies are unaffected")
	_, err := reg.Open("u1", a.PreviewID)
	assert.ErrorIs(t, err, preview.ErrNotFound)

	assert.False(t, ws.Apply("u1", a.succeeded(1, 1)))
	assert.True(t, ws.Apply("u1", b.succeeded(9, 90)))

	list := ws.List("u1")
	require.Len(t, list, 1)
	assert.Equal(t, StateProcessed, list[0].State)
	assert.Equal(t, b.PreviewID, list[0].PreviewID)

	ws.Drop("u1", []string{b.ID})
	assert.Empty(t, ws.List("u1"))
	assert.Zero(t, reg.Len())
}

func TestWorkspaceClaim(t *testing.T) {
	ws := NewWorkspace(nil)
	res := ws.Add("u1", []Upload{{Name: "a.pdf"}, {Name: "b.pdf"}, {Name: "c.pdf"}})
	a, b, c := res.Added[0], res.Added[1], res.Added[2]
	ws.Apply("u1", b.succeeded(1, 1))

	claimed := ws.Claim("u1", nil, StateCommitting, StateProcessed)
	require.Len(t, claimed, 1)
	assert.Equal(t, b.ID, claimed[0].ID)
	assert.Equal(t, StateProcessed, claimed[0].State)
	assert.Empty(t, ws.Claim("u1", nil, StateCommitting, StateProcessed), "already claimed")
	assert.Empty(t, ws.Claim("u1", []string{b.ID}, StateCommitting, StateProcessed), "ids do not bypass the claim")

	ws.Restore("u1", StateCommitting, claimed)
	assert.Len(t, ws.Claim("u1", []string{b.ID}, StateCommitting, StateProcessed), 1)

	got := ws.Claim("u1", []string{c.ID}, StateProcessing, StateSelected, StateFailed)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Len(t, ws.Claim("u1", nil, StateProcessing, StateSelected, StateFailed), 1, "only a is left")

	for _, d := range ws.List("u1") {
		if d.ID == a.ID || d.ID == c.ID {
			assert.Equal(t, StateProcessing, d.State)
		}
	}
}
