package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// decodeEmbedded decodes a base64 payload, dropping any data URI header up to
// and including the first comma. ASCII whitespace inside the payload is ignored.
func decodeEmbedded(payload string) ([]byte, error) {
	if _, data, found := strings.Cut(payload, ","); found {
		payload = data
	}
	return base64.StdEncoding.DecodeString(strings.Map(dropSpace, payload))
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return -1
	}
	return r
}

// fetchRemote downloads url in full. The returned content type is empty when
// the response does not declare one.
func fetchRemote(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("remote fetch error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read remote body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
