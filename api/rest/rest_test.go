package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method  string
	path    string
	headers http.Header
	body    map[string]any
	parts   []capturedPart
}

type capturedPart struct {
	field, filename, contentType, content string
}

func newServer(t *testing.T, status int, response string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.headers = r.Header.Clone()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			mr, err := r.MultipartReader()
			require.NoError(t, err)
			for {
				p, err := mr.NextPart()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				data, _ := io.ReadAll(p)
				got.parts = append(got.parts, capturedPart{
					field:       p.FormName(),
					filename:    p.FileName(),
					contentType: p.Header.Get("Content-Type"),
					content:     string(data),
				})
			}
		} else if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				got.body = nil
				_ = json.Unmarshal(raw, &got.body)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL+"/api/", opts...)
	require.NoError(t, err)
	return c
}

func TestCreatePropertySendsJSONAndHeaders(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusCreated, `{"property_id": 77}`, &got)
	c := newClient(t, srv, WithToken("secret"))

	ctx := api.WithIdempotencyKey(context.Background(), "key-1")
	rec, err := c.Properties().Create(ctx, map[string]any{"sale_price": 100, "rent_price": nil})
	require.NoError(t, err)

	assert.Equal(t, "77", rec.ID())
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/properties", got.path)
	assert.Equal(t, "Bearer secret", got.headers.Get("Authorization"))
	assert.Equal(t, "key-1", got.headers.Get(HeaderIdempotencyKey))
	assert.Equal(t, float64(100), got.body["sale_price"])
	v, ok := got.body["rent_price"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestGetDoesNotSendIdempotencyKey(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"data": {"id": 5, "title": "x"}}`, &got)
	c := newClient(t, srv)

	ctx := api.WithIdempotencyKey(context.Background(), "key-1")
	rec, err := c.Apartments().Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "/api/public/apartments/5", got.path)
	assert.Equal(t, "5", rec.ID())
	assert.Empty(t, got.headers.Get(HeaderIdempotencyKey))
	assert.Empty(t, got.headers.Get("Authorization"))
}

func TestDeleteFileBodies(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, ``, &got)
	c := newClient(t, srv)

	require.NoError(t, c.Properties().DeleteFile(context.Background(), "3", "https://cdn/x.jpg", ""))
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/api/properties/3/file", got.path)
	assert.Equal(t, map[string]any{"fileUrl": "https://cdn/x.jpg", "type": "photo"}, got.body)

	require.NoError(t, c.Apartments().DeleteFile(context.Background(), "4", "https://cdn/y.jpg"))
	assert.Equal(t, "/api/apartments/4/file", got.path)
	assert.Equal(t, map[string]any{"fileUrl": "https://cdn/y.jpg"}, got.body)
}

func TestUploadWritesRepeatedFilesParts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(a, []byte("AAA"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("BBB"), 0o600))

	var got captured
	srv := newServer(t, http.StatusOK, `{}`, &got)
	c := newClient(t, srv)

	err := c.Properties().Upload(context.Background(), "9", []draft.NewMedia{
		{URI: "file://" + a, Name: "front.jpg", MimeType: "image/jpeg"},
		{URI: b},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/properties/9/upload", got.path)
	require.Len(t, got.parts, 2)
	assert.Equal(t, capturedPart{field: "files", filename: "front.jpg", contentType: "image/jpeg", content: "AAA"}, got.parts[0])
	assert.Equal(t, "files", got.parts[1].field)
	assert.Equal(t, "b.png", got.parts[1].filename)
	assert.Equal(t, "image/png", got.parts[1].contentType)
}

func TestUploadUsesMediaOpener(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{}`, &got)
	opener := MediaOpenerFunc(func(_ context.Context, uri string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("from:" + uri)), nil
	})
	c := newClient(t, srv, WithMediaOpener(opener))

	require.NoError(t, c.Apartments().Upload(context.Background(), "1", []draft.NewMedia{{URI: "content://42", Name: "x.jpg"}}))
	require.Len(t, got.parts, 1)
	assert.Equal(t, "from:content://42", got.parts[0].content)
}

func TestFileOpenerStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "front.jpg"), []byte("jpeg"), 0o644))
	opener := FileOpener{Root: root}

	rc, err := opener.Open(context.Background(), "front.jpg")
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))

	for _, uri := range []string{"../../etc/passwd", "photos/../../outside.jpg", "content://42"} {
		_, err := opener.Open(context.Background(), uri)
		require.Error(t, err, uri)
		assert.True(t, errors.IsCategory(err, errors.CategoryBadInput), uri)
	}
}

func TestStatusErrorsMapToCategories(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		category errors.Category
		message  string
	}{
		{http.StatusBadRequest, `{"error": "Title too long"}`, errors.CategoryBadInput, "Title too long"},
		{http.StatusUnauthorized, `{"message": "Login required"}`, errors.CategoryAuth, "Login required"},
		{http.StatusNotFound, `not json`, errors.CategoryNotFound, ""},
		{http.StatusBadGateway, `{}`, errors.CategoryExternal, ""},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var got captured
			srv := newServer(t, tc.status, tc.body, &got)
			c := newClient(t, srv)

			_, err := c.Properties().Get(context.Background(), "1")
			require.Error(t, err)
			var ge *errors.Error
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tc.category, ge.Category)
			assert.Equal(t, tc.status, ge.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, ge.Metadata[MetaServerMessage])
				assert.Equal(t, tc.message, ge.Message)
			} else {
				_, ok := ge.Metadata[MetaServerMessage]
				assert.False(t, ok)
			}
		})
	}
}

func TestListEndpointsAcceptEnvelopes(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"data": [{"id": 1, "name": "Kabul"}]}`, &got)
	c := newClient(t, srv)

	places, err := c.Locations().Provinces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []api.Place{{ID: "1", Name: "Kabul"}}, places)
	assert.Equal(t, "/api/locations/provinces", got.path)

	_, err = c.Locations().Areas(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, "/api/locations/districts/12/areas", got.path)
}

func TestUnitsAndMine(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"id": 1}, {"id": 2}]`, &got)
	c := newClient(t, srv)

	units, err := c.Apartments().Units(context.Background(), "8")
	require.NoError(t, err)
	assert.Len(t, units, 2)
	assert.Equal(t, "/api/public/apartments/8/properties", got.path)

	_, err = c.Apartments().Mine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/apartments/my", got.path)
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)
}
