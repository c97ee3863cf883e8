package domain

// UserEvent is produced by onboarding. The concrete types are UserCreated and
// DisplayNameRejected.
type UserEvent interface {
	userEvent()
	Trace() string
}

// UserCreated is emitted when a display name passes validation.
type UserCreated struct {
	TraceID string
	User    User
}

// DisplayNameRejected is emitted when a display name fails validation.
type DisplayNameRejected struct {
	TraceID       string
	AttemptedName string
	Code          DisplayNameRejection
	Message       string
}

// Field is the request field the rejection refers to.
func (DisplayNameRejected) Field() string { return "displayName" }

func (UserCreated) userEvent()         {}
func (DisplayNameRejected) userEvent() {}

func (e UserCreated) Trace() string         { return e.TraceID }
func (e DisplayNameRejected) Trace() string { return e.TraceID }
