package openid

import "context"

// Hooks are the provider-specific extension points of the consumer. Concrete
// providers inject an implementation at construction; BaseHooks supplies the
// identity/no-op defaults.
type Hooks interface {
	// LookupIdentifier may rewrite or default the identifier before
	// discovery runs.
	LookupIdentifier(ctx context.Context, identifier string) string

	// UpdateAuthRequest augments the outgoing auth request, typically by
	// attaching extension parameters.
	UpdateAuthRequest(ctx context.Context, req *AuthRequest)

	// AccessToken exchanges an OAuth request token bundled in the provider
	// response for access credentials. Returning nil skips the credentials
	// field of the result envelope.
	AccessToken(ctx context.Context, requestToken string) (map[string]any, error)
}

// BaseHooks implements the default consumer behavior: the identifier passes
// through untouched and the standard attribute extensions are requested.
type BaseHooks struct{}

var _ Hooks = BaseHooks{}

func (BaseHooks) LookupIdentifier(_ context.Context, identifier string) string {
	return identifier
}

func (BaseHooks) UpdateAuthRequest(_ context.Context, req *AuthRequest) {
	merge(req, axFetchRequest())
	merge(req, sregRequest())
}

func (BaseHooks) AccessToken(context.Context, string) (map[string]any, error) {
	return nil, nil
}

func merge(req *AuthRequest, ext map[string][]string) {
	for key, values := range ext {
		for _, v := range values {
			req.Extensions.Set(key, v)
		}
	}
}
