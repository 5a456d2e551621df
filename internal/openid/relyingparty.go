package openid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	openidwire "github.com/yohcop/openid-go"
)

// CompletionStatus classifies the provider's answer to a handshake.
type CompletionStatus int

const (
	StatusSuccess CompletionStatus = iota
	StatusFailure
	StatusCancel
)

// AuthRequest describes the outgoing authentication request before it is
// turned into a provider redirect. Hooks mutate Extensions to attach
// attribute-exchange, simple-registration, or OAuth-hybrid parameters.
type AuthRequest struct {
	Identifier string
	ReturnTo   string
	Realm      string
	Extensions url.Values
}

// AuthRedirect is the constructed provider hop. State is the protocol
// library's opaque per-attempt blob, persisted alongside the attempt and
// handed back on completion.
type AuthRedirect struct {
	URL          string
	SendRedirect bool
	State        json.RawMessage
}

// Completion is the verified outcome of a provider callback.
type Completion struct {
	Status   CompletionStatus
	Identity string
	// CanonicalID is a provider-issued stable handle, preferred over the raw
	// claimed identifier when supplied.
	CanonicalID string
}

// RelyingParty is the narrow boundary to the OpenID wire-protocol library.
// It owns discovery, association handling, and signature verification; the
// consumer core never sees those internals.
type RelyingParty interface {
	AuthURL(ctx context.Context, req *AuthRequest) (*AuthRedirect, error)
	Complete(ctx context.Context, requestURL string, params url.Values, returnTo string, state json.RawMessage) (*Completion, error)
}

type relyingParty struct {
	discoveryCache openidwire.DiscoveryCache
	nonceStore     openidwire.NonceStore
}

// NewRelyingParty builds the default relying party on top of the openid-go
// consumer library.
func NewRelyingParty() RelyingParty {
	return &relyingParty{
		discoveryCache: openidwire.NewSimpleDiscoveryCache(),
		nonceStore:     openidwire.NewSimpleNonceStore(),
	}
}

func (rp *relyingParty) AuthURL(_ context.Context, req *AuthRequest) (*AuthRedirect, error) {
	raw, err := openidwire.RedirectURL(req.Identifier, req.ReturnTo, req.Realm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	if len(req.Extensions) > 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: parse redirect: %v", ErrDiscovery, err)
		}
		q := u.Query()
		for key, values := range req.Extensions {
			for _, v := range values {
				q.Set(key, v)
			}
		}
		u.RawQuery = q.Encode()
		raw = u.String()
	}

	// openid-go only produces GET redirects; providers requiring a form POST
	// would need a different RelyingParty implementation.
	return &AuthRedirect{URL: raw, SendRedirect: true}, nil
}

func (rp *relyingParty) Complete(_ context.Context, requestURL string, params url.Values, _ string, _ json.RawMessage) (*Completion, error) {
	switch params.Get("openid.mode") {
	case "cancel":
		return &Completion{Status: StatusCancel}, nil
	case "error":
		return &Completion{Status: StatusFailure}, nil
	}

	id, err := openidwire.Verify(requestURL, rp.discoveryCache, rp.nonceStore)
	if err != nil {
		return &Completion{Status: StatusFailure}, nil
	}
	return &Completion{Status: StatusSuccess, Identity: id}, nil
}
