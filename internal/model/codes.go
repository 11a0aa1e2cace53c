package model

import "fmt"

// ResultCode is an HRESULT-style status code. The high bit distinguishes
// failures from successes so processor-supplied codes and engine codes share
// one numeric space and round-trip through results unchanged.
type ResultCode uint32

const (
	// OK is the universal success code.
	OK ResultCode = 0

	// CodeFail is the generic, unclassified failure.
	CodeFail ResultCode = 0x80004005
	// CodeUnexpected marks an internal error the engine could not classify.
	CodeUnexpected ResultCode = 0x8000FFFF
	// CodeCancelled marks work abandoned because the caller cancelled the apply.
	CodeCancelled ResultCode = 0x800704C7
)

// Set-processing failure codes. These surface both as per-unit codes and as
// the aggregate code of an apply run.
const (
	CodeDuplicateIdentifier   ResultCode = 0x8AC40001
	CodeMissingDependency     ResultCode = 0x8AC40002
	CodeDependencyCycle       ResultCode = 0x8AC40003
	CodeAssertionFailed       ResultCode = 0x8AC40004
	CodeDependencyUnsatisfied ResultCode = 0x8AC40005
	CodeSetApplyFailed        ResultCode = 0x8AC40006
	CodeManuallySkipped       ResultCode = 0x8AC40007
)

// Succeeded reports whether the code represents success.
func (c ResultCode) Succeeded() bool {
	return c&0x80000000 == 0
}

// Failed reports whether the code represents failure.
func (c ResultCode) Failed() bool {
	return !c.Succeeded()
}

var codeNames = map[ResultCode]string{
	OK:                        "ok",
	CodeFail:                  "fail",
	CodeUnexpected:            "unexpected",
	CodeCancelled:             "cancelled",
	CodeDuplicateIdentifier:   "duplicate_identifier",
	CodeMissingDependency:     "missing_dependency",
	CodeDependencyCycle:       "dependency_cycle",
	CodeAssertionFailed:       "assertion_failed",
	CodeDependencyUnsatisfied: "dependency_unsatisfied",
	CodeSetApplyFailed:        "set_apply_failed",
	CodeManuallySkipped:       "manually_skipped",
}

// String renders known codes by name and everything else as hex.
func (c ResultCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// ResultSource identifies which layer produced a failure code.
type ResultSource string

const (
	// SourceNone is the zero source carried by successful results.
	SourceNone ResultSource = ""
	// SourceConfigurationSet marks failures found while validating the set itself.
	SourceConfigurationSet ResultSource = "configuration_set"
	// SourcePrecondition marks units blocked before their own work ran.
	SourcePrecondition ResultSource = "precondition"
	// SourceUnitProcessing marks failures reported by a unit processor.
	SourceUnitProcessing ResultSource = "unit_processing"
	// SourceInternal marks engine-side errors.
	SourceInternal ResultSource = "internal"
)
