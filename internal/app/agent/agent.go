/*
Package agent contains the staff identity model and its persistence.

An agent is a helpdesk staff member: the stable logical identity that owns
websocket connections, sends direct messages, and appears in the presence set.
*/
package agent

import "time"

// Agent represents one helpdesk staff account.
type Agent struct {
	// ID is the stable identity key used across sessions; one agent with
	// several open tabs still maps to one ID.
	ID string `json:"id"`

	// Username is the unique sign-in name.
	Username string `json:"username"`

	// DisplayName is the name shown to colleagues and visitors.
	DisplayName string `json:"displayName"`

	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}
