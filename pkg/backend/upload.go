package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"game-catalog/pkg/models"
)

// GameIDHeader names the game an upload belongs to
const GameIDHeader = "x-game-id"

// sniffLen is how many leading bytes are used to detect the content type
const sniffLen = 3072

// ProgressFunc receives the upload percentage, 0 to 100
type ProgressFunc func(percent int)

// Upload streams one file to the backend as the multipart field "file".
// progress is called whenever the percentage of size sent changes.
func (c *Client) Upload(ctx context.Context, gameID, fileName string, r io.Reader, size int64, progress ProgressFunc) (*models.UploadResult, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("upload %s: failed to read file: %w", fileName, err)
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()

	body := &progressReader{
		reader:   io.MultiReader(bytes.NewReader(head), r),
		total:    size,
		callback: progress,
		last:     -1,
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, fileName, contentType, body))
	}()

	headers := http.Header{}
	headers.Set("Content-Type", mw.FormDataContentType())
	headers.Set(GameIDHeader, gameID)

	resp, err := c.do(ctx, http.MethodPost, "/api/upload", pr, headers)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, checkStatus("upload failed", resp)
	}

	var result models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("upload %s: failed to decode response body: %w", fileName, err)
	}
	body.finish()
	return &result, nil
}

func writeFilePart(mw *multipart.Writer, fileName, contentType string, body io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(fileName)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// progressReader reports how much of the file has been read
type progressReader struct {
	mu        sync.Mutex
	reader    io.Reader
	total     int64
	bytesRead int64
	last      int
	callback  ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bytesRead += int64(n)
	if p.total > 0 {
		percent := int(p.bytesRead * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		p.report(percent)
	}
	return n, err
}

func (p *progressReader) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report(100)
}

func (p *progressReader) report(percent int) {
	if p.callback == nil || percent == p.last {
		return
	}
	p.last = percent
	p.callback(percent)
}
