package httpclient

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthAPIKey sends the key in a named header.
	AuthAPIKey
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
	// Key is the API key value (AuthAPIKey).
	Key string
	// Name is the header name (AuthAPIKey). Defaults to "X-API-Key".
	Name string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Name: headerName}
}

// Apply sets the authentication header on headers.
func (a *AuthConfig) Apply(headers map[string]string) {
	if a == nil || headers == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		headers["Authorization"] = "Bearer " + a.Token
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		headers[name] = a.Key
	}
}
