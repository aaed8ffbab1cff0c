// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxPageBytes caps a fetched document.
const maxPageBytes = 8 << 20

type fetchResult struct {
	requested string
	final     string
	body      string
	err       error
}

// fetch is an in-flight page request. The result arrives on done exactly
// once unless cancel is called first.
type fetch struct {
	done   chan fetchResult
	cancel context.CancelFunc
}

func startFetch(client *http.Client, uri, userAgent string) *fetch {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fetch{done: make(chan fetchResult, 1), cancel: cancel}
	go func() {
		defer cancel()
		res := fetchResult{requested: uri, final: uri}
		res.body, res.final, res.err = get(ctx, client, uri, userAgent)
		f.done <- res
	}()
	return f
}

func get(ctx context.Context, client *http.Client, uri, userAgent string) (body, final string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", uri, fmt.Errorf("build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", uri, err
	}
	defer resp.Body.Close()

	final = uri
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", final, err
	}
	if resp.StatusCode >= 400 {
		return "", final, fmt.Errorf("status %d", resp.StatusCode)
	}
	return string(data), final, nil
}
