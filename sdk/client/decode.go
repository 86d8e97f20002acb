package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

const acceptEncoding = "gzip, br, zstd"

// readBody reads resp.Body fully and undoes any Content-Encoding the server applied.
// The Content-Encoding header is removed once decoded.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	if encoding == "" || encoding == "identity" || len(raw) == 0 {
		return raw, nil
	}
	decoded, err := decompress(encoding, raw)
	if err != nil {
		return nil, err
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	return decoded, nil
}

func decompress(encoding string, data []byte) ([]byte, error) {
	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("client: create gzip reader: %w", err)
		}
		defer func() {
			if errClose := reader.Close(); errClose != nil {
				log.WithError(errClose).Warn("failed to close gzip reader")
			}
		}()
		out, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("client: decompress gzip: %w", err)
		}
		return out, nil
	case "br":
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("client: decompress brotli: %w", err)
		}
		return out, nil
	case "zstd":
		decoder, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("client: create zstd reader: %w", err)
		}
		defer decoder.Close()
		out, err := io.ReadAll(decoder)
		if err != nil {
			return nil, fmt.Errorf("client: decompress zstd: %w", err)
		}
		return out, nil
	default:
		log.Warnf("client: unsupported content encoding %q, returning raw body", encoding)
		return data, nil
	}
}
