package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/api/apitest"
	"github.com/goliatone/go-wizard/draft"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("entry-%d", n)
	}
}

func testLedger(opts ...LedgerOption) *Ledger {
	base := []LedgerOption{WithIDFunc(seqIDs()), WithClock(func() time.Time { return fixedNow })}
	return NewLedger(append(base, opts...)...)
}

func samplePartial(kind api.Kind, id, key string) submit.Partial {
	return submit.Partial{
		Kind:      kind,
		EntityID:  id,
		Stage:     submit.StageUpload,
		Completed: []submit.Stage{submit.StageSave},
		Pending:   []submit.Stage{submit.StageUpload, submit.StageDelete},
		Key:       key,
		Cause:     "storage down",
	}
}

func sampleWork() payload.Result {
	return payload.Result{
		Upload: []draft.NewMedia{{URI: "file:///a.jpg", Name: "a.jpg", MimeType: "image/jpeg"}},
		Delete: []draft.ExistingMedia{{URL: "https://cdn/1.jpg", Type: draft.MediaTypePhoto}},
	}
}

func TestLedgerRecordsOrchestratorPartial(t *testing.T) {
	ledger := testLedger()
	fake := apitest.NewProperties()
	fake.FailOn("Upload", errors.New("storage down", errors.CategoryExternal))

	o := submit.New(submit.PropertyTarget{API: fake},
		submit.WithRecorder(ledger),
		submit.WithKeyFunc(func() string { return "key-1" }),
	)
	_, err := o.Submit(context.Background(), submit.Request{Payload: payload.Result{
		Body:   map[string]any{"title": "x"},
		Upload: []draft.NewMedia{{URI: "file:///a.jpg"}},
	}})
	require.True(t, submit.IsPartial(err))

	entries := ledger.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "entry-1", e.ID)
	assert.Equal(t, api.KindProperty, e.Kind)
	assert.Equal(t, "101", e.EntityID)
	assert.Equal(t, submit.StageUpload, e.Stage)
	assert.Equal(t, []submit.Stage{submit.StageUpload, submit.StageDelete}, e.Pending)
	assert.Equal(t, "key-1", e.Key)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, "storage down", e.Cause)
	require.Len(t, e.Upload, 1)
	assert.Empty(t, e.Delete)
}

func TestLedgerUpdatesOpenEntryForSameKey(t *testing.T) {
	ledger := testLedger()
	ctx := context.Background()

	require.NoError(t, ledger.RecordPartial(ctx, samplePartial(api.KindProperty, "7", "k"), sampleWork()))

	again := samplePartial(api.KindProperty, "7", "k")
	again.Stage = submit.StageDelete
	again.Completed = []submit.Stage{submit.StageUpload}
	again.Pending = []submit.Stage{submit.StageDelete}
	require.NoError(t, ledger.RecordPartial(ctx, again, payload.Result{Delete: sampleWork().Delete}))

	entries := ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, submit.StageDelete, entries[0].Stage)
	assert.Equal(t, []submit.Stage{submit.StageSave, submit.StageUpload}, entries[0].Completed)
	assert.Equal(t, []submit.Stage{submit.StageDelete}, entries[0].Pending)
	assert.Empty(t, entries[0].Upload)
	assert.Len(t, entries[0].Delete, 1)

	require.NoError(t, ledger.RecordPartial(ctx, samplePartial(api.KindProperty, "7", "other"), sampleWork()))
	require.NoError(t, ledger.RecordPartial(ctx, samplePartial(api.KindApartment, "7", "k"), sampleWork()))
	assert.Len(t, ledger.Entries(), 3)
}

func TestLedgerEntriesAreCopies(t *testing.T) {
	ledger := testLedger()
	require.NoError(t, ledger.RecordPartial(context.Background(), samplePartial(api.KindProperty, "7", "k"), sampleWork()))

	entries := ledger.Entries()
	entries[0].Pending[0] = "tampered"
	entries[0].Upload[0].URI = "tampered"

	e, ok := ledger.Get("entry-1")
	require.True(t, ok)
	assert.Equal(t, submit.StageUpload, e.Pending[0])
	assert.Equal(t, "file:///a.jpg", e.Upload[0].URI)
}

func TestLedgerFiltersByStatus(t *testing.T) {
	ledger := testLedger()
	ctx := context.Background()
	require.NoError(t, ledger.RecordPartial(ctx, samplePartial(api.KindProperty, "1", "a"), sampleWork()))
	require.NoError(t, ledger.RecordPartial(ctx, samplePartial(api.KindProperty, "2", "b"), sampleWork()))

	resolved, err := ledger.Resolve("entry-1")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, resolved.Status)

	pending := ledger.Entries(StatusPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "entry-2", pending[0].ID)
	assert.Len(t, ledger.Entries(StatusPending, StatusResolved), 2)

	removed, err := ledger.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, ledger.Entries(), 1)
}

func TestLedgerUpdateUnknownEntry(t *testing.T) {
	_, err := testLedger().Update("missing", func(*Entry) {})
	require.Error(t, err)
	assert.True(t, flow.HasCode(err, ErrCodeEntryNotFound))
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestOpenLedgerPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ledger.yaml")

	ledger, err := OpenLedger(path, WithIDFunc(seqIDs()), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	assert.Empty(t, ledger.Entries())
	assert.Equal(t, path, ledger.Path())

	require.NoError(t, ledger.RecordPartial(context.Background(), samplePartial(api.KindApartment, "9", "k"), sampleWork()))
	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := OpenLedger(path)
	require.NoError(t, err)
	entries := reloaded.Entries()
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "entry-1", e.ID)
	assert.Equal(t, api.KindApartment, e.Kind)
	assert.Equal(t, "9", e.EntityID)
	assert.Equal(t, []submit.Stage{submit.StageUpload, submit.StageDelete}, e.Pending)
	assert.Equal(t, sampleWork().Upload, e.Upload)
	assert.Equal(t, sampleWork().Delete, e.Delete)
	assert.True(t, e.CreatedAt.Equal(fixedNow))
	assert.Equal(t, StatusPending, e.Status)
}

func TestOpenLedgerRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries: [unclosed"), 0o644))

	_, err := OpenLedger(path)
	require.Error(t, err)
	assert.True(t, flow.HasCode(err, ErrCodeLedgerRead))
}
