package roles

import "fmt"

// MissingRoleMappingError reports a recipient absent from an explicit
// roster.
type MissingRoleMappingError struct {
	Recipient string
}

func (e *MissingRoleMappingError) Error() string {
	return fmt.Sprintf("roster has no role mapping for recipient %q", e.Recipient)
}

// InvalidRoleValueError reports a roster entry whose role is outside the
// closed set.
type InvalidRoleValueError struct {
	Recipient string
	Value     string
}

func (e *InvalidRoleValueError) Error() string {
	return fmt.Sprintf("roster entry for %q has invalid role %q", e.Recipient, e.Value)
}

// EmptyRecipientNameError reports a blank or whitespace-only roster key.
type EmptyRecipientNameError struct{}

func (e *EmptyRecipientNameError) Error() string {
	return "roster contains a blank recipient name"
}
