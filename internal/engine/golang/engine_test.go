package golang

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/odata4gen/internal/engine"
)

func baseConfig() engine.Config {
	return engine.Config{
		MetadataPath:             filepath.Join("testdata", "trippin_v4.xml"),
		MetadataRelativePath:     "ODataServiceCsdl.xml",
		ServiceName:              "ODataService",
		UseTracking:              true,
		IgnoreUnexpectedElements: true,
		EnableNamingAlias:        true,
	}
}

func generate(t *testing.T, cfg engine.Config) *engine.Output {
	t.Helper()
	out, err := New().Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

type captureWriter struct {
	names []string
	files map[string][]byte
}

func (w *captureWriter) WriteBytes(name string, content []byte, destination string) error {
	if w.files == nil {
		w.files = map[string][]byte{}
	}
	w.names = append(w.names, name)
	w.files[destination] = content
	return nil
}

func TestEngineIdentity(t *testing.T) {
	e := New()
	assert.Equal(t, "go", e.Name())
	assert.Equal(t, "go", e.Extension())
	var _ engine.Engine = e
}

func TestGenerateSingleFile(t *testing.T) {
	out := generate(t, baseConfig())
	src := string(out.Source)

	assert.Nil(t, out.Emitter)
	assert.Contains(t, src, "// Code generated by odata4gen #VersionNumber#. DO NOT EDIT.")
	assert.Contains(t, src, "package trippin")
	assert.Regexp(t, `MetadataVersion\s+= "#VersionNumber#"`, src)
	assert.Regexp(t, `MetadataFile\s+= "ODataServiceCsdl.xml"`, src)
	assert.Regexp(t, `Namespace\s+= "Trippin"`, src)

	assert.Contains(t, src, "type PersonGender string")
	assert.Regexp(t, `PersonGenderMale\s+PersonGender = "Male"`, src)

	assert.Contains(t, src, "type Person struct")
	assert.Regexp(t, `UserName\s+string\s+`+"`"+`json:"UserName"`+"`", src)
	assert.Regexp(t, `LastName\s+string\s+`+"`"+`json:"LastName,omitempty"`+"`", src)
	assert.Regexp(t, `Emails\s+\[\]string`, src)
	assert.Regexp(t, `AddressInfo\s+\[\]Location`, src)
	assert.Regexp(t, `Gender\s+\*PersonGender`, src)
	assert.Regexp(t, `Age\s+\*int64`, src)
	assert.Regexp(t, `Friends\s+Tracked\[Person\]`, src)
	assert.Contains(t, src, "func (Person) KeyProperties() []string")

	assert.Contains(t, src, "type Location struct")
	assert.Regexp(t, `City\s+\*City`, src)
	assert.Contains(t, src, "type Airline struct")

	assert.Contains(t, src, "type Tracked[T any] struct")
	assert.Contains(t, src, "type Container struct")
	assert.Contains(t, src, "func NewContainer(baseURL string) *Container")
	assert.Contains(t, src, "func (c *Container) People() EntitySet[Person]")
	assert.Contains(t, src, "func (c *Container) Airlines() EntitySet[Airline]")
	assert.Contains(t, src, "func (c *Container) GetNearestAirportURL() string")
	assert.Contains(t, src, "func (c *Container) ResetDataSourceURL() string")
	assert.Regexp(t, `OperationGetFavoriteAirline\s+= "Trippin.GetFavoriteAirline"`, src)
}

func TestGenerateUnknownTypeIsWarning(t *testing.T) {
	out := generate(t, baseConfig())

	assert.Regexp(t, `Photo\s+json.RawMessage`, string(out.Source))
	assert.False(t, out.HasErrors())
	require.NotEmpty(t, out.Diagnostics)
	assert.Equal(t, engine.SeverityWarning, out.Diagnostics[0].Severity)
	assert.Equal(t, "Trippin.Person.Photo", out.Diagnostics[0].Element)
	assert.Contains(t, out.Diagnostics[0].Message, "Trippin.Photo")
}

func TestGenerateOptions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*engine.Config)
		contains []string
		absent   []string
		patterns []string
	}{
		{
			name:     "without tracking",
			mutate:   func(c *engine.Config) { c.UseTracking = false },
			patterns: []string{`Friends\s+\[\]Person`},
			absent:   []string{"type Tracked[T any] struct"},
		},
		{
			name:     "naming alias",
			mutate:   func(c *engine.Config) {},
			patterns: []string{`HomeAddress\s+\*Location\s+` + "`" + `json:"home_address,omitempty"` + "`"},
		},
		{
			name:     "raw names",
			mutate:   func(c *engine.Config) { c.EnableNamingAlias = false },
			patterns: []string{`Home_address\s+\*Location`},
		},
		{
			name:     "internal types",
			mutate:   func(c *engine.Config) { c.MakeTypesInternal = true },
			contains: []string{"type person struct", "type container struct", "func newContainer(baseURL string) *container", "type personGender string"},
			absent:   []string{"type Person struct"},
			patterns: []string{`UserName\s+string`},
		},
		{
			name:     "namespace prefix",
			mutate:   func(c *engine.Config) { c.NamespacePrefix = "Contoso.Client" },
			contains: []string{"package contosoclient"},
			patterns: []string{`Namespace\s+= "Contoso.Client.Trippin"`},
		},
		{
			name:     "custom container",
			mutate:   func(c *engine.Config) { c.CustomContainerName = "TripClient" },
			contains: []string{"type TripClient struct", "func NewTripClient(baseURL string) *TripClient", "func (c *TripClient) People() EntitySet[Person]"},
			absent:   []string{"type Container struct"},
		},
		{
			name:     "custom headers",
			mutate:   func(c *engine.Config) { c.CustomHTTPHeaders = []string{"X-Api-Key: secret"} },
			patterns: []string{`"X-Api-Key":\s+"secret"`},
		},
		{
			name: "excluded schema type",
			mutate: func(c *engine.Config) {
				c.ExcludedSchemaTypes = []string{"Trippin.Airline"}
			},
			absent: []string{"type Airline struct", "Airlines() EntitySet"},
		},
		{
			name: "excluded operation import",
			mutate: func(c *engine.Config) {
				c.ExcludedOperationImports = []string{"GetNearestAirport"}
			},
			contains: []string{"ResetDataSourceURL"},
			absent:   []string{"GetNearestAirportURL"},
		},
		{
			name: "excluded bound operation",
			mutate: func(c *engine.Config) {
				c.ExcludedBoundOperations = []string{"GetFavoriteAirline"}
			},
			absent: []string{"OperationGetFavoriteAirline"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			src := string(generate(t, cfg).Source)

			for _, s := range tt.contains {
				assert.Contains(t, src, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, src, s)
			}
			for _, p := range tt.patterns {
				assert.Regexp(t, p, src)
			}
		})
	}
}

func TestGenerateExcludedTypeWarnsForSet(t *testing.T) {
	cfg := baseConfig()
	cfg.ExcludedSchemaTypes = []string{"Airline"}
	out := generate(t, cfg)

	var elements []string
	for _, d := range out.Diagnostics {
		elements = append(elements, d.Element)
	}
	assert.Contains(t, elements, "Container.Airlines")
}

func TestGenerateBadHeaderIsWarning(t *testing.T) {
	cfg := baseConfig()
	cfg.CustomHTTPHeaders = []string{"no separator"}
	out := generate(t, cfg)

	assert.False(t, out.HasErrors())
	found := false
	for _, d := range out.Diagnostics {
		if d.Severity == engine.SeverityWarning && d.Element == "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateMultipleFiles(t *testing.T) {
	cfg := baseConfig()
	cfg.GenerateMultipleFiles = true
	out := generate(t, cfg)

	src := string(out.Source)
	assert.Contains(t, src, "type Container struct")
	assert.NotContains(t, src, "type Person struct")
	require.NotNil(t, out.Emitter)

	w := &captureWriter{}
	require.NoError(t, out.Emitter.Emit(context.Background(), w, "out"))
	assert.Equal(t, []string{"PersonGender.go", "Location.go", "City.go", "Person.go", "Airline.go"}, w.names)

	person := string(w.files[filepath.Join("out", "Person.go")])
	assert.Contains(t, person, "// Code generated by odata4gen #VersionNumber#. DO NOT EDIT.")
	assert.Contains(t, person, "package trippin")
	assert.Contains(t, person, "type Person struct")
	assert.NotContains(t, person, "type Container struct")
}

func TestEmitStopsOnCanceledContext(t *testing.T) {
	cfg := baseConfig()
	cfg.GenerateMultipleFiles = true
	out := generate(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &captureWriter{}
	require.ErrorIs(t, out.Emitter.Emit(ctx, w, "out"), context.Canceled)
	assert.Empty(t, w.names)
}

func TestGenerateUnexpectedElements(t *testing.T) {
	cfg := baseConfig()
	cfg.MetadataPath = filepath.Join("testdata", "unexpected_v4.xml")

	out := generate(t, cfg)
	assert.False(t, out.HasErrors())

	cfg.IgnoreUnexpectedElements = false
	out = generate(t, cfg)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Extension", out.Diagnostics[0].Element)
	// The document still generates.
	assert.Contains(t, string(out.Source), "type Item struct")
	assert.Contains(t, string(out.Source), "type Items struct")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		cfg := baseConfig()
		cfg.MetadataPath = filepath.Join(t.TempDir(), "missing.xml")
		_, err := New().Generate(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().Generate(ctx, baseConfig())
		require.ErrorIs(t, err, context.Canceled)
	})
}
