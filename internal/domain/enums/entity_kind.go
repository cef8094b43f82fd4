package enums

import "slices"

// EntityKind names one of the moderated record types.
type EntityKind string

const (
	EntityKindUser        EntityKind = "user"
	EntityKindService     EntityKind = "service"
	EntityKindJob         EntityKind = "job"
	EntityKindHireRequest EntityKind = "hire_request"
)

var entityKinds = []EntityKind{
	EntityKindUser,
	EntityKindService,
	EntityKindJob,
	EntityKindHireRequest,
}

// EntityKinds lists every moderated kind in display order.
func EntityKinds() []EntityKind {
	return slices.Clone(entityKinds)
}

// Valid accepts only the canonical spellings above.
func (k EntityKind) Valid() bool {
	return slices.Contains(entityKinds, k)
}
