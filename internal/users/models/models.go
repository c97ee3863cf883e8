// Package models holds the wire types for user onboarding.
package models

import (
	"github.com/google/uuid"

	"github.com/leynos/wildside-sub003/internal/domain"
)

// RegisterBody is the POST /api/v1/users request.
type RegisterBody struct {
	DisplayName string `json:"displayName"`
}

// User is the wire form of a registered user.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	TraceID     string `json:"traceId,omitempty"`
}

func UserFromDomain(user domain.User, traceID string) User {
	return User{ID: user.ID.String(), DisplayName: user.DisplayName.String(), TraceID: traceID}
}

// RejectionDetails describes a refused display name.
type RejectionDetails struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func RejectionDetailsFromDomain(e domain.DisplayNameRejected) RejectionDetails {
	return RejectionDetails{
		Field:   e.Field(),
		Value:   e.AttemptedName,
		Message: e.Message,
		Code:    string(e.Code),
	}
}

// Map renders the details for the HTTP error envelope.
func (d RejectionDetails) Map() map[string]any {
	return map[string]any{"field": d.Field, "value": d.Value, "message": d.Message, "code": d.Code}
}

// SocketRequest is an inbound WebSocket frame. Both fields are required; a
// frame missing either is malformed.
type SocketRequest struct {
	TraceID     *uuid.UUID `json:"traceId"`
	DisplayName *string    `json:"displayName"`
}

func (r SocketRequest) Valid() bool {
	return r.TraceID != nil && r.DisplayName != nil
}

// SocketCreated is sent when a display name is accepted.
type SocketCreated struct {
	TraceID     string `json:"traceId"`
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// SocketError is sent when a display name is refused or cannot be stored.
type SocketError struct {
	TraceID string            `json:"traceId"`
	Code    string            `json:"code"`
	Error   string            `json:"error"`
	Details *RejectionDetails `json:"details,omitempty"`
}

// SocketReply converts an onboarding event into the frame sent back.
func SocketReply(event domain.UserEvent) any {
	switch e := event.(type) {
	case domain.UserCreated:
		return SocketCreated{TraceID: e.TraceID, ID: e.User.ID.String(), DisplayName: e.User.DisplayName.String()}
	case domain.DisplayNameRejected:
		details := RejectionDetailsFromDomain(e)
		return SocketError{TraceID: e.TraceID, Code: string(e.Code), Error: e.Message, Details: &details}
	default:
		return nil
	}
}
