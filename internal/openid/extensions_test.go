package openid

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAXFetchRequest(t *testing.T) {
	v := axFetchRequest()

	require.Equal(t, "http://openid.net/srv/ax/1.0", v.Get("openid.ns.ax"))
	require.Equal(t, "fetch_request", v.Get("openid.ax.mode"))
	require.Equal(t, "http://axschema.org/contact/email", v.Get("openid.ax.type.email"))
	require.Equal(t, "http://axschema.org/namePerson/friendly", v.Get("openid.ax.type.nickname"))

	available := strings.Split(v.Get("openid.ax.if_available"), ",")
	require.Contains(t, available, "email")
	require.Contains(t, available, "first_name")
	require.Contains(t, available, "web")
}

func TestSRegRequest(t *testing.T) {
	v := sregRequest()

	require.Equal(t, "http://openid.net/extensions/sreg/1.1", v.Get("openid.ns.sreg"))
	optional := strings.Split(v.Get("openid.sreg.optional"), ",")
	require.Len(t, optional, 9)
	require.Contains(t, optional, "nickname")
	require.Contains(t, optional, "dob")
}

func TestParseSRegResponse_DeclaredAlias(t *testing.T) {
	params := url.Values{}
	params.Set("openid.ns.ext3", "http://openid.net/extensions/sreg/1.1")
	params.Set("openid.ext3.email", "alice@example.com")
	params.Set("openid.ext3.nickname", "alice")

	resp := ParseSRegResponse(params)
	require.Equal(t, "alice@example.com", resp["email"])
	require.Equal(t, "alice", resp["nickname"])
}

func TestParseSRegResponse_ConventionalAliasWithoutNamespace(t *testing.T) {
	params := url.Values{}
	params.Set("openid.sreg.fullname", "Alice Liddell")

	resp := ParseSRegResponse(params)
	require.Equal(t, "Alice Liddell", resp["fullname"])
}

func TestParseSRegResponse_LegacyNamespace(t *testing.T) {
	params := url.Values{}
	params.Set("openid.ns.s1", "http://openid.net/sreg/1.0")
	params.Set("openid.s1.country", "GB")

	resp := ParseSRegResponse(params)
	require.Equal(t, "GB", resp["country"])
}

func TestParseSRegResponse_Empty(t *testing.T) {
	require.Nil(t, ParseSRegResponse(url.Values{}))
	require.Nil(t, ParseSRegResponse(url.Values{"openid.mode": {"id_res"}}))
}

func TestParseAXResponse_SingleValueForm(t *testing.T) {
	params := url.Values{}
	params.Set("openid.ns.ext1", "http://openid.net/srv/ax/1.0")
	params.Set("openid.ext1.type.email", "http://axschema.org/contact/email")
	params.Set("openid.ext1.value.email", "alice@example.com")

	resp := ParseAXResponse(params)
	require.Equal(t, "alice@example.com", resp["http://axschema.org/contact/email"])
}

func TestParseAXResponse_CountedValueForm(t *testing.T) {
	params := url.Values{}
	params.Set("openid.ns.ax", "http://openid.net/srv/ax/1.0")
	params.Set("openid.ax.type.web", "http://axschema.org/contact/web/default")
	params.Set("openid.ax.value.web.1", "https://alice.example")

	resp := ParseAXResponse(params)
	require.Equal(t, "https://alice.example", resp["http://axschema.org/contact/web/default"])
}

func TestParseAXResponse_ProviderChosenAliases(t *testing.T) {
	// Aliases chosen by the provider need not match the ones we requested.
	params := url.Values{}
	params.Set("openid.ns.ax", "http://openid.net/srv/ax/1.0")
	params.Set("openid.ax.type.whatever", "http://axschema.org/namePerson/first")
	params.Set("openid.ax.value.whatever", "Alice")

	resp := ParseAXResponse(params)
	require.Equal(t, "Alice", resp["http://axschema.org/namePerson/first"])
}

func TestParseAXResponse_Empty(t *testing.T) {
	require.Nil(t, ParseAXResponse(url.Values{}))

	// Namespace declared but no attributes returned.
	params := url.Values{}
	params.Set("openid.ns.ax", "http://openid.net/srv/ax/1.0")
	params.Set("openid.ax.mode", "fetch_response")
	require.Nil(t, ParseAXResponse(params))
}

func TestParseOAuthRequestToken(t *testing.T) {
	params := url.Values{}
	params.Set("openid.ns.ext2", "http://specs.openid.net/extensions/oauth/1.0")
	params.Set("openid.ext2.request_token", "req-abc")
	require.Equal(t, "req-abc", ParseOAuthRequestToken(params))

	require.Empty(t, ParseOAuthRequestToken(url.Values{}))
}

func TestRedirectForm(t *testing.T) {
	html, err := RedirectForm("https://app.example/cb", "tok-123")
	require.NoError(t, err)
	require.Contains(t, html, `action="https://app.example/cb"`)
	require.Contains(t, html, `name="token" value="tok-123"`)
	require.Contains(t, html, "document.forms[0].submit()")
}

func TestAuthRequestForm_SortsFields(t *testing.T) {
	html, err := authRequestForm("https://provider.example/auth?openid.realm=r&openid.mode=checkid_setup")
	require.NoError(t, err)
	require.Contains(t, html, `action="https://provider.example/auth"`)
	modeAt := strings.Index(html, `name="openid.mode"`)
	realmAt := strings.Index(html, `name="openid.realm"`)
	require.Greater(t, modeAt, -1)
	require.Greater(t, realmAt, modeAt)
}
