package output

import (
	"log/slog"
	"os"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/logfields"
)

// VersionToken is replaced with the generator version in every written file.
const VersionToken = "#VersionNumber#"

// LedgerEntry records one managed write.
type LedgerEntry struct {
	Destination string
	Source      string
}

// FileManager performs token-substituting writes and keeps the ledger.
type FileManager struct {
	tokens *orderedmap.OrderedMap[string, string]
	ledger []LedgerEntry
	logger *slog.Logger
}

// NewFileManager returns a FileManager with no tokens.
func NewFileManager(logger *slog.Logger) *FileManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileManager{
		tokens: orderedmap.New[string, string](),
		logger: logger,
	}
}

// SetToken registers a replacement. Re-registering a key replaces its value
// and keeps its position.
func (m *FileManager) SetToken(key, value string) {
	if key == "" {
		return
	}
	m.tokens.Set(key, value)
}

// Apply substitutes every registered token in content, in registration order.
func (m *FileManager) Apply(content string) string {
	for pair := m.tokens.Oldest(); pair != nil; pair = pair.Next() {
		content = strings.ReplaceAll(content, pair.Key, pair.Value)
	}
	return content
}

// Write reads source, substitutes the tokens and writes the result to
// destination, overwriting it. The ledger entry is recorded before the
// write is attempted.
func (m *FileManager) Write(source, destination string) error {
	m.ledger = append(m.ledger, LedgerEntry{Destination: destination, Source: source})

	data, err := os.ReadFile(source)
	if err != nil {
		return errors.FileWriteError(destination, err).WithContext("source", source).Build()
	}
	return m.write(destination, string(data))
}

// WriteBytes is Write for in-memory content. name identifies the content in
// the ledger.
func (m *FileManager) WriteBytes(name string, content []byte, destination string) error {
	m.ledger = append(m.ledger, LedgerEntry{Destination: destination, Source: name})
	return m.write(destination, string(content))
}

func (m *FileManager) write(destination, content string) error {
	out := m.Apply(content)
	// #nosec G306 -- generated sources are meant to be shared
	if err := os.WriteFile(destination, []byte(out), 0o644); err != nil {
		return errors.FileWriteError(destination, err).Build()
	}
	m.logger.Debug("Wrote file", logfields.Path(destination), slog.Int("bytes", len(out)))
	return nil
}

// Ledger returns a copy of the ledger in write order.
func (m *FileManager) Ledger() []LedgerEntry {
	out := make([]LedgerEntry, len(m.ledger))
	copy(out, m.ledger)
	return out
}
