package valueobject

import "fmt"

// EditScope selects how far a series edit or delete reaches: one occurrence,
// all occurrences from the effective date on, or the whole series. It is a
// closed type so scope dispatch is a switch over known constants rather than
// ad-hoc string comparison.
type EditScope int

const (
	// ScopeSingle affects only the occurrence at the effective date.
	ScopeSingle EditScope = iota
	// ScopeFuture affects the effective date and every occurrence after it.
	ScopeFuture
	// ScopeAll affects the entire series definition. Already-materialized
	// entries keep their values.
	ScopeAll
)

const (
	scopeSingleName = "single"
	scopeFutureName = "future"
	scopeAllName    = "all"
)

// ParseEditScope converts a wire-format scope string into an EditScope.
func ParseEditScope(s string) (EditScope, error) {
	switch s {
	case scopeSingleName:
		return ScopeSingle, nil
	case scopeFutureName:
		return ScopeFuture, nil
	case scopeAllName:
		return ScopeAll, nil
	default:
		return 0, fmt.Errorf("unknown edit scope %q", s)
	}
}

// String returns the wire-format name of the scope.
func (s EditScope) String() string {
	switch s {
	case ScopeSingle:
		return scopeSingleName
	case ScopeFuture:
		return scopeFutureName
	case ScopeAll:
		return scopeAllName
	default:
		return fmt.Sprintf("EditScope(%d)", int(s))
	}
}
