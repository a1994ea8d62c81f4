package usecase

import "context"

type credentialKey struct{}

// WithCredential returns a context carrying a transport-supplied credential,
// for example the X-Auth-Key header of an MCP-over-HTTP request.
func WithCredential(ctx context.Context, credential string) context.Context {
	if credential == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, credential)
}

// CredentialFromContext returns the credential stored by WithCredential.
func CredentialFromContext(ctx context.Context) string {
	s, _ := ctx.Value(credentialKey{}).(string)
	return s
}

// CredentialResolver picks the credential for one call: the first non-empty
// candidate, else the credential carried by ctx, else the configured default.
type CredentialResolver struct {
	Default string
}

func (r CredentialResolver) Resolve(ctx context.Context, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	if c := CredentialFromContext(ctx); c != "" {
		return c
	}
	return r.Default
}
