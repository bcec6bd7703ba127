package config

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
)

// Settings is the free-form key/value surface handed to plugins. Keys keep
// their first-seen order and match case-insensitively; a later value for an
// existing key replaces it in place.
type Settings struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewSettings returns an empty settings map.
func NewSettings() *Settings {
	return &Settings{m: orderedmap.New[string, string]()}
}

func (s *Settings) lookupKey(key string) (string, bool) {
	if _, ok := s.m.Get(key); ok {
		return key, true
	}
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, key) {
			return pair.Key, true
		}
	}
	return "", false
}

// Set stores value under key.
func (s *Settings) Set(key, value string) {
	if existing, ok := s.lookupKey(key); ok {
		key = existing
	}
	s.m.Set(key, value)
}

// Get returns the value for key.
func (s *Settings) Get(key string) (string, bool) {
	if s == nil || s.m == nil {
		return "", false
	}
	existing, ok := s.lookupKey(key)
	if !ok {
		return "", false
	}
	return s.m.Get(existing)
}

// Len returns the number of keys.
func (s *Settings) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Keys returns the keys in insertion order.
func (s *Settings) Keys() []string {
	if s == nil || s.m == nil {
		return nil
	}
	keys := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Merge copies every entry of other into s, in other's order.
func (s *Settings) Merge(other *Settings) {
	if other == nil || other.m == nil {
		return
	}
	for pair := other.m.Oldest(); pair != nil; pair = pair.Next() {
		s.Set(pair.Key, pair.Value)
	}
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	cp := NewSettings()
	cp.Merge(s)
	return cp
}

// UnmarshalYAML decodes a mapping node and keeps the document order.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("settings: expected a mapping, got %s", node.Tag)
	}
	if s.m == nil {
		s.m = orderedmap.New[string, string]()
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key, value string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("settings: value of %q: %w", key, err)
		}
		s.Set(key, value)
	}
	return nil
}

// ParseSettings turns trailing command line arguments into settings.
// Accepted forms: key=value, --key=value, /key=value, --key value and
// /key value. A repeated key keeps the last value.
func ParseSettings(args []string) (*Settings, error) {
	s := NewSettings()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		prefixed := false
		switch {
		case strings.HasPrefix(arg, "--"):
			arg, prefixed = arg[2:], true
		case strings.HasPrefix(arg, "/"):
			arg, prefixed = arg[1:], true
		}

		if key, value, ok := strings.Cut(arg, "="); ok {
			if strings.TrimSpace(key) == "" {
				return nil, invalidSetting(args[i])
			}
			s.Set(key, value)
			continue
		}

		if !prefixed || arg == "" || i+1 >= len(args) {
			return nil, invalidSetting(args[i])
		}
		i++
		s.Set(arg, args[i])
	}
	return s, nil
}

func invalidSetting(arg string) error {
	return errors.ConfigurationError("invalid setting, expected key=value").
		WithContext("argument", arg).
		Build()
}
