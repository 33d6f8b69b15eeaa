package google

// DefaultOAuthScopes are the Google OAuth scopes used by the Gmail
// import. The assistant only reads the mailbox; messages are copied
// into the local store and all processing happens there.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail read-only access
	"https://www.googleapis.com/auth/gmail.readonly",
}
