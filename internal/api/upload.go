package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const uploadFieldName = "file"

// Upload describes a file to send as multipart/form-data.
type Upload struct {
	// FileName is reported to the server in the part's Content-Disposition.
	FileName string
	// Size is the file length in bytes; negative when unknown, in which case
	// no progress is reported.
	Size int64
	// Open returns a fresh reader for each attempt.
	Open func() (io.ReadCloser, error)
	// Fields are extra form values written before the file part.
	Fields map[string]string
}

// FileUpload prepares an Upload backed by a file on disk.
func FileUpload(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("upload %s is a directory", path)
	}
	return Upload{
		FileName: filepath.Base(path),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// BytesUpload prepares an Upload from an in-memory buffer.
func BytesUpload(name string, data []byte) Upload {
	return Upload{
		FileName: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ProgressFunc receives upload progress as a rounded percentage (0-100).
// It is called from the transport's goroutine.
type ProgressFunc func(percent int)

// UploadFile posts up as multipart/form-data under the field "file" and
// decodes the JSON response into out. The primary host is tried first; on any
// failure exactly one more attempt goes to the fallback host, without backoff.
func (c *Client) UploadFile(ctx context.Context, path string, up Upload, onProgress ProgressFunc, out any, opts ...RequestOption) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if up.Open == nil {
		return c.report(uploadErrorTitle, unknownUploadMessage, &Error{Kind: KindRequest, Method: http.MethodPost, Cause: fmt.Errorf("upload has no content")})
	}
	if strings.TrimSpace(up.FileName) == "" {
		up.FileName = "upload"
	}

	rc := newRequestConfig(opts)
	timeout := rc.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	requestID := uuid.NewString()

	var last *Error
	for i, t := range []target{targetPrimary, targetFallback} {
		u, err := c.hosts.resolve(t, path, rc.query)
		if err != nil {
			return c.report(uploadErrorTitle, unknownUploadMessage, &Error{Kind: KindRequest, Method: http.MethodPost, Cause: err})
		}
		last = c.uploadAttempt(ctx, u, up, onProgress, out, rc, timeout, requestID)
		if last == nil {
			return nil
		}
		last.Attempts = i + 1
		if ctx.Err() != nil {
			break
		}
		if t == targetPrimary {
			c.logger.Warn("upload failed on primary host, retrying on fallback",
				"path", path, "file", up.FileName, "request_id", requestID, "error", last)
		}
	}
	return c.report(uploadErrorTitle, unknownUploadMessage, last)
}

func (c *Client) uploadAttempt(ctx context.Context, u string, up Upload, onProgress ProgressFunc, out any, rc requestConfig, timeout time.Duration, requestID string) *Error {
	if err := c.wait(ctx); err != nil {
		return &Error{Kind: KindCanceled, Method: http.MethodPost, URL: u, Cause: err}
	}

	prefix, suffix, contentType, err := multipartFrame(up)
	if err != nil {
		return &Error{Kind: KindRequest, Method: http.MethodPost, URL: u, Cause: err}
	}
	f, err := up.Open()
	if err != nil {
		return &Error{Kind: KindRequest, Method: http.MethodPost, URL: u, Cause: fmt.Errorf("open upload: %w", err)}
	}
	defer func() { _ = f.Close() }()

	var body io.Reader = io.MultiReader(bytes.NewReader(prefix), f, bytes.NewReader(suffix))
	total := int64(-1)
	if up.Size >= 0 {
		total = int64(len(prefix)) + up.Size + int64(len(suffix))
		if onProgress != nil && total > 0 {
			body = &progressReader{r: body, total: total, last: -1, fn: onProgress}
		}
	}

	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, u, body)
	if err != nil {
		return &Error{Kind: KindRequest, Method: http.MethodPost, URL: u, Cause: fmt.Errorf("create request: %w", err)}
	}
	if total >= 0 {
		req.ContentLength = total
	}
	c.setHeaders(req.Header, rc.header, requestID)
	req.Header.Set("Content-Type", contentType)
	return c.roundTrip(ctx, req, out)
}

// multipartFrame renders everything around the file bytes so the body can be
// streamed with a known length.
func multipartFrame(up Upload) (prefix, suffix []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(up.Fields))
	for k := range up.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, up.Fields[k]); err != nil {
			return nil, nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if _, err := mw.CreateFormFile(uploadFieldName, up.FileName); err != nil {
		return nil, nil, "", fmt.Errorf("create form file: %w", err)
	}
	suffix = []byte("\r\n--" + mw.Boundary() + "--\r\n")
	return buf.Bytes(), suffix, mw.FormDataContentType(), nil
}

// progressReader reports round(sent*100/total) whenever the percentage grows.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	last  int
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		pct := int(math.Round(float64(p.sent) * 100 / float64(p.total)))
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}
