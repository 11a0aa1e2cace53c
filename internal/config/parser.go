package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseSet loads a configuration set file from disk, validates its schema,
// and returns the resulting model. Identifier uniqueness, dependency
// resolution and cycle detection are deliberately left to the apply engine so
// those findings carry the engine's result codes.
func ParseSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, confseterrors.NewParseError(path, 0, err)
	}

	set, err := ParseSetBytes(data)
	if err != nil {
		if parseErr, ok := err.(*confseterrors.ParseError); ok {
			parseErr.Path = path
		}
		return nil, err
	}

	return set, nil
}

// ParseSetBytes parses and validates a configuration set document held in
// memory.
func ParseSetBytes(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, confseterrors.NewParseError("", extractLine(err), err)
	}

	if set.InstanceID == "" {
		set.InstanceID = uuid.NewString()
	}

	if err := ValidateSet(&set); err != nil {
		return nil, err
	}

	return &set, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
