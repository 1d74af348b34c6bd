package registry

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Overrides is the process-wide set of command-line style flags. The same
// argument list is parsed once per constructor, each time against that
// constructor's schema, so flags meant for other constructors are skipped.
type Overrides struct {
	args []string
}

// NewOverrides copies args, usually os.Args[1:].
func NewOverrides(args []string) *Overrides {
	return &Overrides{args: slices.Clone(args)}
}

// Parse returns the overrides supplied for params under prefix, keyed by the
// bare parameter name. Parameters without a flag are absent from the result.
func (o *Overrides) Parse(params Schema, prefix string) (Kwargs, error) {
	out := Kwargs{}
	if o == nil || len(o.args) == 0 || len(params) == 0 {
		return out, nil
	}
	fs := pflag.NewFlagSet(prefix, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true

	raw := make(map[string]*string, len(params))
	for _, p := range params {
		raw[p.Name] = fs.String(joinPrefix(prefix, p.Name), "", "")
	}
	// help is owned by the CLI, not by constructors.
	if fs.Lookup("help") == nil {
		fs.BoolP("help", "h", false, "")
	}
	if err := fs.Parse(o.args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}

	for _, p := range params {
		flag := joinPrefix(prefix, p.Name)
		if !fs.Changed(flag) {
			continue
		}
		v, err := coerce(p, *raw[p.Name])
		if err != nil {
			return nil, fmt.Errorf("%w: --%s: %v", ErrInvalidOverride, flag, err)
		}
		out[p.Name] = v
	}
	return out, nil
}

func coerce(p Param, raw string) (any, error) {
	switch p.Kind {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, err
		}
		return int(n), nil
	case KindFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case KindBool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case KindString:
		return raw, nil
	default:
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func joinPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
