package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/LayoutForge/internal/config"
	"github.com/gnemet/LayoutForge/internal/extract"
	"github.com/gnemet/LayoutForge/internal/observer"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	cfg = &config.Config{}
	cfg.Application.Storage.Stage = filepath.Join(dir, "stage")
	cfg.Application.Storage.Output = filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(cfg.Application.Storage.Stage, 0755))
	require.NoError(t, os.MkdirAll(cfg.Application.Storage.Output, 0755))

	engine := extract.New(extract.MustDefaultTables(), extract.DefaultFilter(), nil)
	obs := observer.NewObserver(cfg, engine, nil, nil, nil)
	srv := httptest.NewServer(newMux(context.Background(), obs))
	t.Cleanup(srv.Close)
	return srv
}

func upload(t *testing.T, url, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeUpload(t *testing.T) {
	srv := newTestServer(t)

	resp := upload(t, srv.URL, "deck.json", []byte(`{"document":{}}`))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	data, err := os.ReadFile(filepath.Join(cfg.Application.Storage.Stage, "deck.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"document":{}}`, string(data))

	entries, err := os.ReadDir(cfg.Application.Storage.Stage)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no partial upload left behind")

	resp = upload(t, srv.URL, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeLayoutsAndStatus(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.Application.Storage.Output, "deck.layouts.json"), []byte(`{"slides":[]}`), 0644))

	resp, err := http.Get(srv.URL + "/layouts/deck.layouts.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"slides":[]}`, string(body))

	resp, err = http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var status map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status["processing"])

	resp, err = http.Get(srv.URL + "/reprocess")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
