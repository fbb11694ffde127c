package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/indieinfra/ingest/config"
)

const (
	fileField      = "image"
	overwriteField = "overwrite"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// HTTPSink posts media to the processing server's upload endpoint. The server
// takes still images and video through the same route, told apart only by
// filename and content type.
type HTTPSink struct {
	client   *http.Client
	endpoint string
}

func NewHTTPSink(cfg *config.Processing, client *http.Client) (*HTTPSink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("processing config is nil")
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.UploadTimeout}
	}

	return &HTTPSink{client: client, endpoint: cfg.ProcessingURL()}, nil
}

func (s *HTTPSink) Upload(ctx context.Context, obj *Object) (string, error) {
	if obj == nil {
		return "", fmt.Errorf("object is required")
	}

	body, contentType, err := encodeForm(obj)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("processing server returned %s", resp.Status)
	}

	return obj.Name, nil
}

func encodeForm(obj *Object) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, quoteEscaper.Replace(obj.Name)))
	h.Set("Content-Type", obj.ContentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(obj.Data); err != nil {
		return nil, "", err
	}

	if err := mw.WriteField(overwriteField, "true"); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return body, mw.FormDataContentType(), nil
}
