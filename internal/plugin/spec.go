package plugin

import (
	"strings"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
)

// Spec is a parsed plugin specification.
type Spec struct {
	Raw      string
	Module   string
	TypeName string
	Extra    []string
}

func (s Spec) String() string { return s.Raw }

// ParseSpec splits "module,type[,arg...]". It never touches the filesystem.
func ParseSpec(raw string) (Spec, error) {
	fields := strings.Split(raw, ",")
	if len(fields) < 2 {
		return Spec{}, errors.MalformedPluginSpecError(raw).Build()
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" || fields[1] == "" {
		return Spec{}, errors.MalformedPluginSpecError(raw).Build()
	}
	return Spec{
		Raw:      raw,
		Module:   fields[0],
		TypeName: fields[1],
		Extra:    fields[2:],
	}, nil
}
