/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Messaging Business Logic Errors
const (
	// ErrMessageNotFound indicates the message does not exist or the caller is not permitted to act on it.
	ErrMessageNotFound = 2101

	// ErrMessageBodyTooLong indicates that the message body exceeded the maximum length limit.
	ErrMessageBodyTooLong = 2102

	// ErrFileSizeTooLarge indicates that an attachment exceeded the maximum file size.
	ErrFileSizeTooLarge = 2201

	// ErrAttachmentCountInvalid indicates an invalid number of attachments on one message.
	ErrAttachmentCountInvalid = 2202

	// ErrAttachmentKeyInvalid indicates an attachment key outside the caller's own namespace.
	ErrAttachmentKeyInvalid = 2203

	// ErrPeerNotFound indicates that the addressed agent account does not exist.
	ErrPeerNotFound = 2301
)

// 3xxx: Identity, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid or incorrect.
	ErrPowChallengeInvalid = 3002

	// ErrInvalidUsername indicates the username fails the format rules.
	ErrInvalidUsername = 3101

	// ErrInvalidPassword indicates the password fails the length rules.
	ErrInvalidPassword = 3102

	// ErrUserAlreadyExists indicates the username is already taken.
	ErrUserAlreadyExists = 3103

	// ErrInvalidCredentials indicates a failed sign-in attempt.
	ErrInvalidCredentials = 3104

	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3105
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage operation failed.
	ErrFileStorageFailed = 5101
)
