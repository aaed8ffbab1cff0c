// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// SchemeRequest is a page request for a custom scheme URI.
type SchemeRequest struct {
	Method string
	URI    string
	Header http.Header
}

// SchemeResponse is what a scheme handler serves.
type SchemeResponse struct {
	Status   int
	MimeType string
	Body     []byte
}

// SchemeHandler serves requests for one custom scheme.
type SchemeHandler func(req *SchemeRequest) (*SchemeResponse, error)

// Schemes is the set of custom schemes an engine serves. The zero value is
// empty and ready to use.
type Schemes struct {
	mu       sync.RWMutex
	names    []string
	handlers map[string]SchemeHandler
}

// Register adds a handler for name. A name can be registered only once;
// later attempts fail with ErrDuplicateScheme and leave the first in place.
func (s *Schemes) Register(name string, h SchemeHandler) error {
	name = strings.ToLower(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateScheme, name)
	}
	if s.handlers == nil {
		s.handlers = make(map[string]SchemeHandler)
	}
	s.handlers[name] = h
	s.names = append(s.names, name)
	return nil
}

// Lookup returns the handler for name.
func (s *Schemes) Lookup(name string) (SchemeHandler, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[strings.ToLower(name)]
	return h, ok
}

// Names returns registered scheme names in registration order.
func (s *Schemes) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

// Handles reports whether uri uses a registered scheme.
func (s *Schemes) Handles(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	_, ok := s.Lookup(u.Scheme)
	return ok
}

// Serve dispatches a GET for uri to its scheme handler.
func (s *Schemes) Serve(uri string) (*SchemeResponse, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("engine: parse %q: %w", uri, err)
	}
	h, ok := s.Lookup(u.Scheme)
	if !ok {
		return nil, fmt.Errorf("engine: no handler for scheme %q", u.Scheme)
	}
	resp, err := h(&SchemeRequest{Method: http.MethodGet, URI: uri, Header: http.Header{}})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("engine: %s handler returned no response for %q", u.Scheme, uri)
	}
	return resp, nil
}
