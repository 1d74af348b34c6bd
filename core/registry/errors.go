package registry

import "errors"

var (
	// ErrUnknownFamily is returned when resolving a family nothing was registered for.
	ErrUnknownFamily = errors.New("unknown family")
	// ErrUnknownVariant is the lookup error for a fragment naming an unregistered variant.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrMalformedFragment is returned when a fragment lacks its name or kwargs.
	ErrMalformedFragment = errors.New("malformed fragment")
	// ErrInvalidOverride is returned when a command-line override cannot be coerced.
	ErrInvalidOverride = errors.New("invalid override")
	// ErrUnexpectedArgument is returned for kwargs the constructor does not declare.
	ErrUnexpectedArgument = errors.New("unexpected keyword argument")
	// ErrDuplicateVariant is only returned by registries created with WithStrictRegistration.
	ErrDuplicateVariant = errors.New("variant already registered")
	// ErrFamilyConflict is returned when two different markers share a family name.
	ErrFamilyConflict = errors.New("family name already bound to another type")
)
