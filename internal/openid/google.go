package openid

import "context"

// GoogleDiscoveryURL is Google's federated login discovery endpoint. Google
// ignores user-supplied identifiers, so discovery always starts here.
const GoogleDiscoveryURL = "https://www.google.com/accounts/o8/id"

// AccessTokenFunc exchanges an OAuth request token for access credentials.
type AccessTokenFunc func(ctx context.Context, requestToken string) (map[string]any, error)

// GoogleHooks drives the OpenID+OAuth hybrid flow against Google: a fixed
// discovery identifier, the hybrid extension on the outgoing request, and a
// request-token exchange after a successful handshake.
type GoogleHooks struct {
	BaseHooks

	// ConsumerKey enables the hybrid extension when non-empty.
	ConsumerKey string
	// Scope lists the OAuth scopes requested alongside authentication.
	Scope string
	// Exchange performs the request-token swap. Nil leaves credentials out
	// of the result envelope.
	Exchange AccessTokenFunc
}

var _ Hooks = (*GoogleHooks)(nil)

func (h *GoogleHooks) LookupIdentifier(context.Context, string) string {
	return GoogleDiscoveryURL
}

func (h *GoogleHooks) UpdateAuthRequest(ctx context.Context, req *AuthRequest) {
	h.BaseHooks.UpdateAuthRequest(ctx, req)
	if h.ConsumerKey == "" {
		return
	}
	req.Extensions.Set("openid.ns."+oauthHybridAlias, oauthNamespace)
	req.Extensions.Set("openid."+oauthHybridAlias+".consumer", h.ConsumerKey)
	if h.Scope != "" {
		req.Extensions.Set("openid."+oauthHybridAlias+".scope", h.Scope)
	}
}

func (h *GoogleHooks) AccessToken(ctx context.Context, requestToken string) (map[string]any, error) {
	if h.Exchange == nil {
		return nil, nil
	}
	return h.Exchange(ctx, requestToken)
}

// YahooDiscoveryURL is Yahoo's directed-identity discovery endpoint.
const YahooDiscoveryURL = "https://me.yahoo.com"

// YahooHooks pins discovery to Yahoo's directed-identity endpoint and keeps
// the default attribute extensions.
type YahooHooks struct {
	BaseHooks
}

var _ Hooks = YahooHooks{}

func (YahooHooks) LookupIdentifier(context.Context, string) string {
	return YahooDiscoveryURL
}
