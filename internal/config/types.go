package config

import (
	"gopkg.in/yaml.v3"
)

// Intent declares what the engine should do with a unit: check a
// precondition, observe state, or change state.
type Intent string

const (
	// IntentAssert verifies a precondition without changing anything.
	IntentAssert Intent = "assert"
	// IntentInform reads current state for reporting purposes.
	IntentInform Intent = "inform"
	// IntentApply moves the system into the desired state.
	IntentApply Intent = "apply"
)

// Set represents a full configuration set document.
type Set struct {
	Version     string `yaml:"version" validate:"required,semver"`
	Name        string `yaml:"name" validate:"required,min=1,max=100"`
	Description string `yaml:"description,omitempty"`
	Units       []Unit `yaml:"units" validate:"required,min=1,dive"`

	// InstanceID uniquely identifies one materialization of the document.
	// Assigned at load time when the document does not carry one.
	InstanceID string `yaml:"instance_id,omitempty" validate:"omitempty,uuid4"`

	// FromHistory marks a set reloaded from a prior run rather than authored
	// fresh. Never set by the parser; callers replaying history set it.
	FromHistory bool `yaml:"-"`
}

// Unit describes an individual configuration unit. The identifier is
// optional; anonymous units participate in scheduling but cannot be depended
// upon.
type Unit struct {
	ID        string   `yaml:"id,omitempty" validate:"omitempty,unit_id"`
	Name      string   `yaml:"name,omitempty"`
	Type      string   `yaml:"type" validate:"required,oneof=command copy symlink repo"`
	Intent    Intent   `yaml:"intent,omitempty" validate:"omitempty,oneof=assert inform apply"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Skip      bool     `yaml:"skip,omitempty"`

	Command *CommandUnit `yaml:",inline,omitempty"`
	Copy    *CopyUnit    `yaml:",inline,omitempty"`
	Symlink *SymlinkUnit `yaml:",inline,omitempty"`
	Repo    *RepoUnit    `yaml:",inline,omitempty"`
}

// ShouldApply reports whether the unit is eligible to run. A skipped unit is
// still scheduled so its dependents observe the skip.
func (u *Unit) ShouldApply() bool {
	return !u.Skip
}

// UnmarshalYAML customises unit decoding to populate type-specific settings
// without field conflicts and to default the intent.
func (u *Unit) UnmarshalYAML(value *yaml.Node) error {
	type baseUnit struct {
		ID        string   `yaml:"id"`
		Name      string   `yaml:"name"`
		Type      string   `yaml:"type"`
		Intent    string   `yaml:"intent"`
		DependsOn []string `yaml:"depends_on"`
		Skip      bool     `yaml:"skip"`
	}

	var base baseUnit
	if err := value.Decode(&base); err != nil {
		return err
	}

	u.ID = base.ID
	u.Name = base.Name
	u.Type = base.Type
	u.DependsOn = append([]string(nil), base.DependsOn...)
	u.Skip = base.Skip

	if base.Intent == "" {
		u.Intent = IntentApply
	} else {
		u.Intent = Intent(base.Intent)
	}

	u.Command = nil
	u.Copy = nil
	u.Symlink = nil
	u.Repo = nil

	switch base.Type {
	case "command":
		var cmd CommandUnit
		if err := value.Decode(&cmd); err != nil {
			return err
		}
		u.Command = &cmd
	case "copy":
		var cp CopyUnit
		if err := value.Decode(&cp); err != nil {
			return err
		}
		u.Copy = &cp
	case "symlink":
		var link SymlinkUnit
		if err := value.Decode(&link); err != nil {
			return err
		}
		u.Symlink = &link
	case "repo":
		var repo RepoUnit
		if err := value.Decode(&repo); err != nil {
			return err
		}
		u.Repo = &repo
	}

	return nil
}

// CommandUnit runs a shell command, with an optional check command that
// decides whether the system is already in the desired state.
type CommandUnit struct {
	Command string            `yaml:"command" validate:"required,min=1"`
	Check   string            `yaml:"check,omitempty"`
	Shell   string            `yaml:"shell,omitempty"`
	WorkDir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// CopyUnit manages a destination file from a source file.
type CopyUnit struct {
	Source      string `yaml:"source" validate:"required"`
	Destination string `yaml:"destination" validate:"required,nefield=Source"`
	Overwrite   bool   `yaml:"overwrite,omitempty"`
}

// SymlinkUnit manages a symbolic link.
type SymlinkUnit struct {
	Source string `yaml:"source" validate:"required"`
	Target string `yaml:"target" validate:"required,nefield=Source"`
	Force  bool   `yaml:"force,omitempty"`
}

// RepoUnit clones a git repository to a destination path.
type RepoUnit struct {
	URL         string `yaml:"url" validate:"required,url"`
	Destination string `yaml:"destination" validate:"required"`
	Branch      string `yaml:"branch,omitempty"`
	Depth       int    `yaml:"depth,omitempty" validate:"omitempty,min=0"`
}
