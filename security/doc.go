// Package security holds the credential and TLS primitives used by the
// client transport.
//
// [Secret] wraps the API key so that it never leaks through fmt, JSON or
// log output; the raw value is only reachable through [Secret.Expose].
//
//	key := security.NewSecret(os.Getenv("DEEPSEEK_API_KEY"))
//	fmt.Println(key) // [REDACTED]
//
// [TLSConfig] builds the *tls.Config for the HTTP transport.
package security
