package model

// ResultInformation carries the failure classification for a unit or a set:
// a status code, the layer that produced it, an optional machine detail (for
// example the identifier of a missing dependency) and an optional
// human-readable description.
type ResultInformation struct {
	Code        ResultCode
	Source      ResultSource
	Details     string
	Description string
}

// Set records a code and source. A recorded failure is never downgraded to
// success by a later call; a later failure replaces it.
func (r *ResultInformation) Set(code ResultCode, source ResultSource) {
	if r.Code.Failed() && code.Succeeded() {
		return
	}
	r.Code = code
	r.Source = source
	r.Details = ""
	r.Description = ""
}

// SetWithDetails records a code and source together with a detail string.
func (r *ResultInformation) SetWithDetails(code ResultCode, source ResultSource, details string) {
	r.Set(code, source)
	if r.Code == code {
		r.Details = details
	}
}

// Adopt copies processor-supplied result information verbatim, subject to the
// same no-downgrade rule as Set.
func (r *ResultInformation) Adopt(other ResultInformation) {
	if r.Code.Failed() && other.Code.Succeeded() {
		return
	}
	*r = other
}

// UnitResult is the mutable per-unit outcome record. One exists per unit for
// the lifetime of an apply run, in input order.
type UnitResult struct {
	UnitID                   string
	State                    UnitState
	Info                     *ResultInformation
	PreviouslyInDesiredState bool
	RebootRequired           bool
}

// NewUnitResult constructs an empty result for the identified unit.
func NewUnitResult(unitID string) *UnitResult {
	return &UnitResult{
		UnitID: unitID,
		State:  UnitStateUnknown,
		Info:   &ResultInformation{},
	}
}

// SetResult aggregates the outcome of one apply run: the per-unit results in
// input order plus a single code for the whole set.
type SetResult struct {
	Units []*UnitResult
	Code  ResultCode
}

// SetCode records the aggregate code for the run.
func (r *SetResult) SetCode(code ResultCode) {
	r.Code = code
}
