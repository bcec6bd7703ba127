package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLocationRemote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://host/svc", "http://host/svc/$metadata"},
		{"http://host/svc/", "http://host/svc/$metadata"},
		{"http://host/svc///", "http://host/svc/$metadata"},
		{"https://host/svc", "https://host/svc/$metadata"},
		{"https://HOST:443/svc/", "https://host/svc/$metadata"},
		{"http://host/svc/$metadata", "http://host/svc/$metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeLocation(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, strings.Count(got, "/$metadata"))
		})
	}
}

func TestNormalizeLocationLocal(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "service.xml"), []byte("<a/>"), 0o600))

	got := NormalizeLocation("service.xml")
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "service.xml", filepath.Base(got))

	// Missing files are left alone and fail later on open.
	assert.Equal(t, "missing.xml", NormalizeLocation("missing.xml"))
}

func TestNormalizeLocationExistingFileNamedLikeURL(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "httpmeta.xml"), []byte("<a/>"), 0o600))

	got := NormalizeLocation("httpmeta.xml")
	assert.True(t, filepath.IsAbs(got))
	assert.NotContains(t, got, "$metadata")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("http://x"))
	assert.True(t, IsRemote("HTTPS://x"))
	assert.False(t, IsRemote("/tmp/x.xml"))
	assert.False(t, IsRemote("file:///tmp/x.xml"))
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("/tmp/x.xml"), LocalPath("file:///tmp/x.xml"))
	assert.Equal(t, "rel/x.xml", LocalPath("rel/x.xml"))
}
