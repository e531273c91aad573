package accesstoken

// Message IDs passed to the [MessageFormatter] for every user-visible
// rejection or validation failure. The default text is what callers see when
// no formatter (or a passthrough formatter) is configured.
const (
	// MsgMissingUserID is rendered when CreateSession is called without a user ID.
	MsgMissingUserID = "Error_Missing_UserID"
	// MsgMissingAccessToken is rendered when a guarded request carries no token.
	MsgMissingAccessToken = "Error_Missing_AccessToken"
	// MsgInvalidAccessToken is rendered when the presented token resolves to no session.
	MsgInvalidAccessToken = "Error_Invalid_AccessToken"
	// MsgInvalidFingerprint is rendered when the stored fingerprint does not
	// match the one derived from the current request.
	MsgInvalidFingerprint = "Error_Invalid_Client_Fingerprint"
)

// MessageFormatter renders human-readable error text. It is the only
// localization hook this package consumes; implementations typically delegate
// to a message catalog keyed by id and fall back to defaultMessage.
type MessageFormatter interface {
	FormatMessage(id, defaultMessage string) string
}

// PassthroughMessages is the default [MessageFormatter]: it ignores the id
// and returns defaultMessage verbatim.
type PassthroughMessages struct{}

// FormatMessage returns defaultMessage unchanged.
func (PassthroughMessages) FormatMessage(_, defaultMessage string) string {
	return defaultMessage
}
