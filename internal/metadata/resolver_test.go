package metadata

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/workspace"
)

type failingTransport struct {
	t *testing.T
}

func (f failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.t.Fatalf("unexpected network request to %s", req.URL)
	return nil, nil
}

func newWorkspace(t *testing.T) *workspace.Manager {
	t.Helper()
	ws := workspace.NewManager(t.TempDir())
	require.NoError(t, ws.Create())
	t.Cleanup(func() { _ = ws.Cleanup() })
	return ws
}

func testConfig(location string) *config.Generation {
	cfg := config.Defaults()
	cfg.MetadataLocation = location
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestResolveLocalV4(t *testing.T) {
	ws := newWorkspace(t)
	r := NewResolver(
		WithScratch(ws),
		WithHTTPClient(&http.Client{Transport: failingTransport{t}}),
	)

	cfg := testConfig(filepath.Join("testdata", "trippin_v4.xml"))
	res, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, Version4, res.Version)
	assert.True(t, filepath.IsAbs(cfg.MetadataLocation), "location rewritten to absolute path")
	assert.Equal(t, cfg.MetadataLocation, res.Location)
	assert.Equal(t, ws.GetPath(), filepath.Dir(res.Path))

	out := readFile(t, res.Path)
	assert.True(t, strings.HasPrefix(out, xmlHeader))
	assert.NotContains(t, out, "sample service used by the tests")
	assert.Contains(t, out, `<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">`)
	assert.Contains(t, out, `<Schema Namespace="Trippin" xmlns="http://docs.oasis-open.org/odata/ns/edm">`)
	assert.True(t, strings.HasSuffix(out, "</edmx:Edmx>"))
}

func TestResolveOutputIsReadableAgain(t *testing.T) {
	ws := newWorkspace(t)
	r := NewResolver(WithScratch(ws))

	first, err := r.Resolve(context.Background(), testConfig(filepath.Join("testdata", "trippin_v4.xml")))
	require.NoError(t, err)

	second, err := r.Resolve(context.Background(), testConfig(first.Path))
	require.NoError(t, err)
	assert.Equal(t, Version4, second.Version)
	assert.Equal(t, readFile(t, first.Path), readFile(t, second.Path))
}

func TestResolveLocalVersions(t *testing.T) {
	ws := newWorkspace(t)
	r := NewResolver(WithScratch(ws), WithHTTPClient(&http.Client{Transport: failingTransport{t}}))

	res, err := r.Resolve(context.Background(), testConfig(filepath.Join("testdata", "northwind_v3.xml")))
	require.NoError(t, err)
	assert.Equal(t, Version3, res.Version)

	unknown := filepath.Join(t.TempDir(), "other.xml")
	require.NoError(t, os.WriteFile(unknown, []byte(`<Edmx xmlns="urn:something-else"><x/></Edmx>`), 0o600))
	res, err = r.Resolve(context.Background(), testConfig(unknown))
	require.NoError(t, err)
	assert.Equal(t, VersionUnknown, res.Version)

	unprefixed := filepath.Join(t.TempDir(), "unprefixed.xml")
	require.NoError(t, os.WriteFile(unprefixed, []byte(`<Edmx xmlns="http://docs.oasis-open.org/odata/ns/edmx"/>`), 0o600))
	res, err = r.Resolve(context.Background(), testConfig(unprefixed))
	require.NoError(t, err)
	assert.Equal(t, Version4, res.Version)
}

func TestResolveFileURL(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join("testdata", "trippin_v4.xml"))
	require.NoError(t, err)

	r := NewResolver(WithScratch(newWorkspace(t)), WithHTTPClient(&http.Client{Transport: failingTransport{t}}))
	res, err := r.Resolve(context.Background(), testConfig("file://"+filepath.ToSlash(abs)))
	require.NoError(t, err)
	assert.Equal(t, Version4, res.Version)
}

func TestResolveErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.xml")
	require.NoError(t, os.WriteFile(garbage, []byte("<a><b></a"), 0o600))
	blank := filepath.Join(dir, "blank.xml")
	require.NoError(t, os.WriteFile(blank, nil, 0o600))

	tests := []struct {
		name     string
		location string
		want     error
	}{
		{"blank location", "   ", errors.ErrConfiguration},
		{"missing file", filepath.Join(dir, "missing.xml"), errors.ErrMetadataFetch},
		{"zero bytes", blank, errors.ErrEmptyMetadata},
		{"no element", filepath.Join("testdata", "empty.xml"), errors.ErrEmptyMetadata},
		{"truncated", garbage, errors.ErrMetadataFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)
			r := NewResolver(WithScratch(ws), WithHTTPClient(&http.Client{Transport: failingTransport{t}}))

			_, err := r.Resolve(context.Background(), testConfig(tt.location))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			entries, readErr := os.ReadDir(ws.GetPath())
			require.NoError(t, readErr)
			assert.Empty(t, entries, "no scratch file left behind")
		})
	}
}

func TestResolveMissingFileNamesLocation(t *testing.T) {
	r := NewResolver(WithScratch(newWorkspace(t)))
	_, err := r.Resolve(context.Background(), testConfig("/nonexistent/meta.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/meta.xml")
}

func TestResolveCharset(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<edmx:Edmx xmlns:edmx=\"http://docs.oasis-open.org/odata/ns/edmx\"><Doc>caf\xe9 &amp; more</Doc></edmx:Edmx>")
	path := filepath.Join(t.TempDir(), "latin1.xml")
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	r := NewResolver(WithScratch(newWorkspace(t)))
	res, err := r.Resolve(context.Background(), testConfig(path))
	require.NoError(t, err)

	out := readFile(t, res.Path)
	assert.Contains(t, out, "<Doc>café &amp; more</Doc>")
	assert.Contains(t, out, `encoding="utf-8"`)
}

func TestResolveRemote(t *testing.T) {
	doc, err := os.ReadFile(filepath.Join("testdata", "trippin_v4.xml"))
	require.NoError(t, err)

	var gotPath, gotAgent, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write(doc)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/svc/")
	cfg.CustomHTTPHeaders = []string{"X-Api-Key: secret"}

	r := NewResolver(WithScratch(newWorkspace(t)))
	res, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "/svc/$metadata", gotPath)
	assert.True(t, strings.HasPrefix(gotAgent, "odata4gen/"), gotAgent)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, srv.URL+"/svc/$metadata", cfg.MetadataLocation)
	assert.Equal(t, Version4, res.Version)
}

func TestResolveRemoteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver(WithScratch(newWorkspace(t)))
	_, err := r.Resolve(context.Background(), testConfig(srv.URL+"/svc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMetadataFetch)
	assert.Contains(t, err.Error(), srv.URL+"/svc/$metadata")
	assert.Contains(t, err.Error(), "404")
}

func TestResolveRemoteNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewResolver(WithScratch(newWorkspace(t)))
	_, err := r.Resolve(context.Background(), testConfig(srv.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMetadataFetch)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolveRemoteRetries(t *testing.T) {
	doc, err := os.ReadFile(filepath.Join("testdata", "trippin_v4.xml"))
	require.NoError(t, err)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(doc)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Fetch.RetryMax = 2

	r := NewResolver(WithScratch(newWorkspace(t)))
	res, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Version4, res.Version)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolveRemoteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewResolver(WithScratch(newWorkspace(t)))
	_, err := r.Resolve(context.Background(), testConfig(url))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMetadataFetch)
}

func TestResolveRemoteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Fetch.Timeout = 50 * time.Millisecond

	r := NewResolver(WithScratch(newWorkspace(t)))
	_, err := r.Resolve(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMetadataFetch)
}

func TestResolveThroughProxy(t *testing.T) {
	doc, err := os.ReadFile(filepath.Join("testdata", "trippin_v4.xml"))
	require.NoError(t, err)

	var requested, auth string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.String()
		auth = r.Header.Get("Proxy-Authorization")
		_, _ = w.Write(doc)
	}))
	defer proxy.Close()

	cfg := testConfig("http://odata.example.test/svc")
	cfg.Proxy = &config.Proxy{
		Host:        strings.TrimPrefix(proxy.URL, "http://"),
		Credentials: &config.Credentials{Username: "alice", Password: "pw", Domain: "CORP"},
	}

	r := NewResolver(WithScratch(newWorkspace(t)))
	res, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Version4, res.Version)

	assert.Equal(t, "http://odata.example.test/svc/$metadata", requested)
	require.True(t, strings.HasPrefix(auth, "Basic "), auth)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	require.NoError(t, err)
	assert.Equal(t, `CORP\alice:pw`, string(decoded))
}

func TestResolveWithoutScratchUsesTempDir(t *testing.T) {
	r := NewResolver()
	res, err := r.Resolve(context.Background(), testConfig(filepath.Join("testdata", "trippin_v4.xml")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(res.Path) })

	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(res.Path))
}

// readOnlyScratch hands out files that reject writes.
type readOnlyScratch struct {
	dir string
}

func (s readOnlyScratch) CreateFile(string) (*os.File, error) {
	path := filepath.Join(s.dir, "metadata.xml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		return nil, err
	}
	return os.Open(path)
}

func TestResolveWriteFailureIsFileWriteError(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(WithScratch(readOnlyScratch{dir: dir}))

	_, err := r.Resolve(context.Background(), testConfig(filepath.Join("testdata", "trippin_v4.xml")))
	require.Error(t, err)
	assert.Equal(t, errors.KindFileWrite, errors.KindOf(err))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	path, _ := ce.Context().GetString("path")
	assert.Equal(t, filepath.Join(dir, "metadata.xml"), path)
	assert.NoFileExists(t, path, "partial output is removed")
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestNormalizeWriteFailure(t *testing.T) {
	doc := `<edmx:Edmx xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx" Version="4.0"/>`

	v, err := normalize(strings.NewReader(doc), brokenWriter{}, "out.xml", "in.xml")
	require.Error(t, err)
	assert.Equal(t, Version4, v)
	assert.Equal(t, errors.KindFileWrite, errors.KindOf(err))
	assert.ErrorIs(t, err, os.ErrClosed)
}
