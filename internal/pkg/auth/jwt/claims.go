package jwt

import "github.com/golang-jwt/jwt"

// Role values carried in the token. Agents are registered staff accounts;
// visitors are anonymous widget sessions admitted through the PoW gate.
const (
	RoleAgent   = "agent"
	RoleVisitor = "visitor"
)

// Payload defines the structure of the JSON Web Token (JWT) claims for DeskHub.
// It includes standard claims required by the JWT specification and custom claims
// necessary for identifying and authorizing participants of the helpdesk.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable identity key of the participant. It is the same across
	// all of the participant's simultaneous sessions, which is what lets the
	// realtime layer group several connections under one identity.
	ID string `json:"id"`

	// Role distinguishes staff agents from anonymous widget visitors.
	Role string `json:"role"`

	// DisplayName is the participant's name as shown to other parties.
	DisplayName string `json:"display_name"`
}
