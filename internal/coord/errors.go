package coord

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyClaimed indicates the area is not AVAILABLE, or the
	// claim lost the transition race to another agent.
	ErrAlreadyClaimed = errors.New("area already claimed")
	// ErrNotOwner indicates the completing agent does not hold the claim.
	ErrNotOwner = errors.New("area assigned to another agent")
	// ErrNotInProgress indicates a completion attempt on an area that is
	// not IN_PROGRESS.
	ErrNotInProgress = errors.New("area not in progress")
	// ErrInvalidDependency indicates a new area references a dependency
	// id absent from the store.
	ErrInvalidDependency = errors.New("dependency does not exist")
	// ErrInvalidCategory indicates a malformed category tag.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidPriority indicates an unknown priority value.
	ErrInvalidPriority = errors.New("invalid priority")
)

// UnmetDependenciesError reports a claim rejected because one or more
// dependencies are not yet COMPLETED. Never retried automatically.
type UnmetDependenciesError struct {
	// AreaID is the area whose claim was rejected.
	AreaID string
	// Unmet lists the dependency ids that are not COMPLETED.
	Unmet []string
}

func (e *UnmetDependenciesError) Error() string {
	return fmt.Sprintf("area %s has unmet dependencies: %s", e.AreaID, strings.Join(e.Unmet, ", "))
}
