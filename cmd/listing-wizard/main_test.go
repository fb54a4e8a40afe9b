package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/reconcile"
	"github.com/goliatone/go-wizard/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propertyDraft = `
fields:
  property_type: House
  description: Two floors
  area_size: 120
  province_id: 1
  district_id: 10
  area_id: 100
  location: Street 1
  sale_price: 1000
media:
  - uri: front.jpg
    name: front.jpg
    mimeType: image/jpeg
`

const apartmentDraft = `{
  "fields": {
    "apartment_name": "Tower A",
    "total_floors": 12,
    "total_units": "48",
    "description": "Twelve floors",
    "province_id": "1",
    "district_id": "10",
    "area_id": "100",
    "address": "Street 2",
    "facilities": {"lift": true, "others": "Gym"}
  },
  "media": [{"uri": "front.jpg"}]
}`

type harness struct {
	dir    string
	env    map[string]string
	stdout *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "front.jpg"), []byte("jpeg"), 0o644))
	return &harness{
		dir: dir,
		env: map[string]string{
			"WIZARD_API_MEDIA_ROOT":         dir,
			"WIZARD_RECONCILE_LEDGER_PATH":  filepath.Join(dir, "ledger.yaml"),
			"WIZARD_SUBMIT_RETRIES":         "0",
			"WIZARD_RECONCILE_MAX_ATTEMPTS": "3",
			"WIZARD_LOG_LEVEL":              "error",
		},
		stdout: &bytes.Buffer{},
	}
}

func (h *harness) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	lookup := func(key string) (string, bool) {
		v, ok := h.env[key]
		return v, ok
	}
	return run(context.Background(), args, h.stdout, io.Discard, lookup)
}

func TestStepsCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("steps", "property"))
	out := h.stdout.String()
	assert.Contains(t, out, "1. ownership: Ownership")
	assert.Contains(t, out, "3. location: Location (skippable)")
	assert.Contains(t, out, "7. review: Review")

	require.NoError(t, h.run("steps", "property", "--inherited"))
	out = h.stdout.String()
	assert.NotContains(t, out, "location: Location")
	assert.NotContains(t, out, "amenities: Amenities")
	assert.Contains(t, out, "5. review: Review")

	assert.Error(t, h.run("steps", "villa"))
}

func TestValidateCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("validate", "property", h.file(t, "ok.yaml", propertyDraft)))
	assert.Equal(t, "valid\n", h.stdout.String())

	err := h.run("validate", "property", h.file(t, "bad.yaml", "fields:\n  description: only this\n"))
	require.Error(t, err)
	assert.True(t, flow.HasCode(err, flow.ErrCodeValidationFailed))
	out := h.stdout.String()
	assert.Contains(t, out, "ownership\n  property_type:")
	assert.Contains(t, out, "media\n")

	require.NoError(t, h.run("validate", "apartment", h.file(t, "apt.json", apartmentDraft)))
}

func TestPayloadCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("payload", "apartment", h.file(t, "apt.json", apartmentDraft)))

	var view struct {
		Body   map[string]any   `json:"body"`
		Upload []map[string]any `json:"upload"`
		Delete []map[string]any `json:"delete"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &view))
	assert.Equal(t, "Tower A", view.Body["apartment_name"])
	assert.EqualValues(t, 12, view.Body["total_floors"])
	assert.Len(t, view.Upload, 1)
	assert.Empty(t, view.Delete)
}

func TestSubmitPartialThenReconcile(t *testing.T) {
	h := newHarness(t)

	var uploadDown atomic.Bool
	uploadDown.Store(true)
	var uploads atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /properties", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": 7}`)
	})
	mux.HandleFunc("POST /properties/7/upload", func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		if uploadDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"error": "storage down"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	h.env["WIZARD_API_BASE_URL"] = srv.URL

	err := h.run("submit", "property", h.file(t, "draft.yaml", propertyDraft))
	require.Error(t, err)
	assert.True(t, submit.IsPartial(err))
	assert.Contains(t, h.stdout.String(), "property 7 saved, upload failed: storage down")

	ledger, err := reconcile.OpenLedger(h.env["WIZARD_RECONCILE_LEDGER_PATH"])
	require.NoError(t, err)
	entries := ledger.Entries(reconcile.StatusPending)
	require.Len(t, entries, 1)
	assert.Equal(t, "7", entries[0].EntityID)

	require.NoError(t, h.run("reconcile", "list"))
	assert.Contains(t, h.stdout.String(), entries[0].ID)

	uploadDown.Store(false)
	require.NoError(t, h.run("reconcile", "retry"))
	assert.Contains(t, h.stdout.String(), "attempted 1, resolved 1, failed 0, skipped 0")
	assert.Equal(t, int32(2), uploads.Load())

	require.NoError(t, h.run("reconcile", "list", "--status", "pending"))
	assert.Equal(t, "no entries\n", h.stdout.String())
}

func TestResolveCommand(t *testing.T) {
	h := newHarness(t)
	ledger, err := reconcile.OpenLedger(h.env["WIZARD_RECONCILE_LEDGER_PATH"], reconcile.WithIDFunc(func() string { return "e1" }))
	require.NoError(t, err)
	require.NoError(t, ledger.RecordPartial(context.Background(), submit.Partial{
		Kind: "apartment", EntityID: "3", Stage: submit.StageDelete, Pending: []submit.Stage{submit.StageDelete}, Key: "k",
	}, reconcile.Entry{}.Work()))

	require.NoError(t, h.run("reconcile", "resolve", "e1"))
	assert.Equal(t, "e1: resolved\n", h.stdout.String())

	assert.Error(t, h.run("reconcile", "resolve", "missing"))
}
