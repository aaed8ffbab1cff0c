// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesAreServed(t *testing.T) {
	schemes, err := appSchemes()
	require.NoError(t, err)

	for _, name := range []string{"index.html", "sidebar.html", "style.css"} {
		attrs := page(schemes, name)
		resp, err := attrs.Schemes.Serve(attrs.URL)
		require.NoError(t, err, name)
		assert.Equal(t, http.StatusOK, resp.Status, name)
		assert.NotEmpty(t, resp.Body, name)
	}
}
