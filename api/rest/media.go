package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/draft"
)

// MediaOpener reads the content of a staged file from its source locator.
type MediaOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// MediaOpenerFunc adapts a function to MediaOpener.
type MediaOpenerFunc func(ctx context.Context, uri string) (io.ReadCloser, error)

func (f MediaOpenerFunc) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return f(ctx, uri)
}

// ErrCodeMediaPath marks a staged media locator the opener refuses.
const ErrCodeMediaPath = "MEDIA_PATH_INVALID"

// FileOpener opens file:// URIs and plain paths from the local disk.
type FileOpener struct {
	// Root, when set, resolves relative paths. A relative path that
	// escapes Root is rejected; absolute paths are opened as given.
	Root string
}

func (o FileOpener) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	p := uri
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, err
		}
		p = u.Path
	} else if strings.Contains(uri, "://") {
		return nil, errors.New("unsupported media uri scheme: "+uri, errors.CategoryBadInput).
			WithTextCode(ErrCodeMediaPath).
			WithMetadata(map[string]any{"uri": uri})
	}
	if o.Root != "" && !filepath.IsAbs(p) {
		root := filepath.Clean(o.Root)
		p = filepath.Join(root, p)
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, errors.New("media path escapes the media root: "+uri, errors.CategoryBadInput).
				WithTextCode(ErrCodeMediaPath).
				WithMetadata(map[string]any{"uri": uri, "root": o.Root})
		}
	}
	return os.Open(p)
}

const formFieldFiles = "files"

// multipartBody writes every file as a repeated "files" part carrying the
// filename and MIME type.
func (c *Client) multipartBody(ctx context.Context, files []draft.NewMedia) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range files {
		if err := c.writePart(ctx, w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "close multipart body")
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) writePart(ctx context.Context, w *multipart.Writer, f draft.NewMedia) error {
	src, err := c.opener.Open(ctx, f.URI)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "open staged media").
			WithTextCode("MEDIA_UNREADABLE").
			WithMetadata(map[string]any{"uri": f.URI})
	}
	defer src.Close()

	name := mediaName(f)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formFieldFiles, name))
	h.Set("Content-Type", mediaType(f, name))
	part, err := w.CreatePart(h)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create multipart part")
	}
	if _, err := io.Copy(part, src); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "read staged media").
			WithTextCode("MEDIA_UNREADABLE").
			WithMetadata(map[string]any{"uri": f.URI})
	}
	return nil
}

func mediaName(f draft.NewMedia) string {
	if n := strings.TrimSpace(f.Name); n != "" {
		return n
	}
	if u, err := url.Parse(f.URI); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(f.URI)
}

func mediaType(f draft.NewMedia, name string) string {
	if t := strings.TrimSpace(f.MimeType); t != "" {
		return t
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (c *Client) upload(ctx context.Context, target string, files []draft.NewMedia) error {
	if len(files) == 0 {
		return nil
	}
	body, contentType, err := c.multipartBody(ctx, files)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create upload request")
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(ctx, req, nil)
}
