package followers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FixtureFetcher returns a FetchFunc that reads a response document from
// path on every call. The file may be JSON or YAML.
func FixtureFetcher(path string) FetchFunc {
	return func(ctx context.Context) (Response, error) {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return Response{}, fmt.Errorf("read fixture: %w", err)
		}

		resp, err := decodeResponse(data)
		if err != nil {
			return Response{}, fmt.Errorf("parse fixture %s: %w", path, err)
		}
		return resp, nil
	}
}

// decodeResponse reads JSON documents with encoding/json, since yaml.v3
// rejects JSON escapes such as \/, and everything else as YAML.
func decodeResponse(data []byte) (Response, error) {
	var resp Response
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		err := json.Unmarshal(trimmed, &resp)
		return resp, err
	}
	err := yaml.Unmarshal(data, &resp)
	return resp, err
}

// StaticFetcher always resolves with resp.
func StaticFetcher(resp Response) FetchFunc {
	return func(ctx context.Context) (Response, error) {
		return resp, ctx.Err()
	}
}

// WithTimeout bounds every call of fetch to d.
func WithTimeout(fetch FetchFunc, d time.Duration) FetchFunc {
	if d <= 0 {
		return fetch
	}
	return func(ctx context.Context) (Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fetch(ctx)
	}
}
