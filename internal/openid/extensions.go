package openid

import (
	"net/url"
	"sort"
	"strings"

	"github.com/datanav/velruse/internal/profile"
)

// Extension namespace URIs.
const (
	axNamespace      = "http://openid.net/srv/ax/1.0"
	sregNamespace    = "http://openid.net/extensions/sreg/1.1"
	sregNamespace10  = "http://openid.net/sreg/1.0"
	oauthNamespace   = "http://specs.openid.net/extensions/oauth/1.0"
	oauthHybridAlias = "oauth"
)

// sregOptionalFields is the fixed field set requested from providers that
// speak Simple Registration.
var sregOptionalFields = []string{
	"nickname", "email", "fullname", "dob", "gender",
	"postcode", "country", "language", "timezone",
}

// axFetchRequest builds the Attribute Exchange fetch-request parameters for
// the fixed attribute set.
func axFetchRequest() url.Values {
	v := url.Values{}
	v.Set("openid.ns.ax", axNamespace)
	v.Set("openid.ax.mode", "fetch_request")

	aliases := make([]string, 0, len(profile.AXAttributes))
	for alias := range profile.AXAttributes {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		v.Set("openid.ax.type."+alias, profile.AXAttributes[alias])
	}
	v.Set("openid.ax.if_available", strings.Join(aliases, ","))
	return v
}

// sregRequest builds the Simple Registration request parameters.
func sregRequest() url.Values {
	v := url.Values{}
	v.Set("openid.ns.sreg", sregNamespace)
	v.Set("openid.sreg.optional", strings.Join(sregOptionalFields, ","))
	return v
}

// extensionAlias finds the alias a provider chose for the given namespace in
// its response parameters. The fallback covers providers that omit the
// namespace declaration for the conventional alias.
func extensionAlias(params url.Values, namespace, fallback string) string {
	for key, values := range params {
		if !strings.HasPrefix(key, "openid.ns.") {
			continue
		}
		for _, v := range values {
			if v == namespace {
				return strings.TrimPrefix(key, "openid.ns.")
			}
		}
	}
	if fallback != "" && hasAliasParams(params, fallback) {
		return fallback
	}
	return ""
}

func hasAliasParams(params url.Values, alias string) bool {
	prefix := "openid." + alias + "."
	for key := range params {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// ParseSRegResponse extracts the Simple Registration fields from callback
// parameters. Returns nil when the provider sent none.
func ParseSRegResponse(params url.Values) profile.SRegResponse {
	alias := extensionAlias(params, sregNamespace, "sreg")
	if alias == "" {
		alias = extensionAlias(params, sregNamespace10, "")
	}
	if alias == "" {
		return nil
	}

	resp := profile.SRegResponse{}
	prefix := "openid." + alias + "."
	for _, field := range sregOptionalFields {
		if v := params.Get(prefix + field); v != "" {
			resp[field] = v
		}
	}
	if len(resp) == 0 {
		return nil
	}
	return resp
}

// ParseAXResponse extracts the Attribute Exchange fetch-response attributes
// keyed by type URI. Both the single-value and counted-value forms are
// accepted. Returns nil when the provider sent none.
func ParseAXResponse(params url.Values) profile.AXResponse {
	alias := extensionAlias(params, axNamespace, "ax")
	if alias == "" {
		return nil
	}

	prefix := "openid." + alias + "."
	resp := profile.AXResponse{}
	for key, values := range params {
		if !strings.HasPrefix(key, prefix+"type.") || len(values) == 0 {
			continue
		}
		attrAlias := strings.TrimPrefix(key, prefix+"type.")
		typeURI := values[0]

		value := params.Get(prefix + "value." + attrAlias)
		if value == "" {
			value = params.Get(prefix + "value." + attrAlias + ".1")
		}
		if value != "" {
			resp[typeURI] = value
		}
	}
	if len(resp) == 0 {
		return nil
	}
	return resp
}

// ParseOAuthRequestToken extracts the request token from an OpenID+OAuth
// hybrid response, if the provider bundled one.
func ParseOAuthRequestToken(params url.Values) string {
	alias := extensionAlias(params, oauthNamespace, oauthHybridAlias)
	if alias == "" {
		return ""
	}
	return params.Get("openid." + alias + ".request_token")
}
