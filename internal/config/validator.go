package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	unitIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("unit_id", func(fl validator.FieldLevel) bool {
			return unitIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateSet performs schema validation on a configuration set document.
// It rejects malformed documents only; duplicate identifiers, unresolvable
// dependencies and dependency cycles are the engine's findings and are not
// reported here.
func ValidateSet(set *Set) error {
	if set == nil {
		return confseterrors.NewValidationError("set", "configuration set is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(set); err != nil {
		return convertValidationError(err)
	}

	for i, unit := range set.Units {
		if err := validateUnitSettings(unit, i); err != nil {
			return err
		}
	}

	return nil
}

func validateUnitSettings(unit Unit, index int) error {
	v := validatorInstance()

	var err error
	switch unit.Type {
	case "command":
		if unit.Command == nil {
			return confseterrors.NewValidationError(fieldForUnit(index, "command"), "command settings are required", nil)
		}
		err = v.Struct(unit.Command)
	case "copy":
		if unit.Copy == nil {
			return confseterrors.NewValidationError(fieldForUnit(index, "copy"), "copy settings are required", nil)
		}
		err = v.Struct(unit.Copy)
	case "symlink":
		if unit.Symlink == nil {
			return confseterrors.NewValidationError(fieldForUnit(index, "symlink"), "symlink settings are required", nil)
		}
		err = v.Struct(unit.Symlink)
	case "repo":
		if unit.Repo == nil {
			return confseterrors.NewValidationError(fieldForUnit(index, "repo"), "repo settings are required", nil)
		}
		err = v.Struct(unit.Repo)
	}

	if err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return confseterrors.NewValidationError("set", err.Error(), err)
	}

	messages := make([]string, 0, len(validationErrors))
	field := ""
	for _, fieldErr := range validationErrors {
		if field == "" {
			field = fieldErr.Namespace()
		}
		messages = append(messages, fmt.Sprintf("%s failed %q", fieldErr.Namespace(), fieldErr.Tag()))
	}
	sort.Strings(messages)

	return confseterrors.NewValidationError(field, strings.Join(messages, "; "), err)
}

func fieldForUnit(index int, name string) string {
	return fmt.Sprintf("units[%d].%s", index, name)
}
