package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmeg8r/jdex/internal/jd"
)

// sensitivityValue is a pflag.Value that only accepts known tiers.
// Folder flags reject "inherit".
type sensitivityValue struct {
	target *jd.Sensitivity
	item   bool
}

var _ pflag.Value = (*sensitivityValue)(nil)

func newSensitivityValue(target *jd.Sensitivity, item bool) *sensitivityValue {
	return &sensitivityValue{target: target, item: item}
}

func (v *sensitivityValue) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v *sensitivityValue) Set(s string) error {
	parse := jd.ParseFolderSensitivity
	if v.item {
		parse = jd.ParseItemSensitivity
	}
	tier, err := parse(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return err
	}
	*v.target = tier
	return nil
}

func (v *sensitivityValue) Type() string { return "sensitivity" }

// parseSets turns repeated --set field=value flags into a patch. Values
// stay strings; the engine coerces them per column.
func parseSets(sets []string) (jd.Patch, error) {
	p := jd.Patch{}
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --set %q: want field=value", s))
		}
		p[field] = value
	}
	return p, nil
}

// parseID reads a positive surrogate key from a positional argument.
func parseID(what, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s id %q: must be a positive integer", what, arg))
	}
	return id, nil
}
