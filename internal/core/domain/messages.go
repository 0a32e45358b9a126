package domain

// Message codes resolved by the message catalog.
const (
	MsgUnexpected        = "exception.unexpected"
	MsgBadRequest        = "exception.bad_request"
	MsgValidation        = "exception.validation"
	MsgPrincipalNotFound = "exception.authentication.login.not_exists"
	MsgBadCredentials    = "exception.authentication.login.bad_credentials"
	MsgInsufficientRole  = "exception.authentication.privilege_insufficient"
	MsgUnauthenticated   = "exception.authentication.not_logged_in"
	MsgTokenInvalid      = "exception.authentication.token_invalid"
	MsgPrincipalExists   = "exception.authentication.register.exists"
	MsgLoggedOut         = "auth.logout.success"
	MsgAccessPublic      = "test"
	MsgAccessUser        = "test.user"
	MsgAccessManager     = "test.manager"
	MsgAccessAdmin       = "test.admin"
)
