package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	axEmail     = "http://axschema.org/contact/email"
	axNickname  = "http://axschema.org/namePerson/friendly"
	axFullName  = "http://axschema.org/namePerson"
	axFirstName = "http://axschema.org/namePerson/first"
	axLastName  = "http://axschema.org/namePerson/last"
	axPrefix    = "http://axschema.org/namePerson/prefix"
	axWeb       = "http://axschema.org/contact/web/default"
	axBirthday  = "http://axschema.org/birthDate"
)

func TestExtract_ProviderInference(t *testing.T) {
	cases := []struct {
		identifier string
		provider   string
	}{
		{"https://www.google.com/accounts/o8/id?id=xyz", "Google"},
		{"https://me.yahoo.com/a/abc", "Yahoo"},
		{"https://example-provider/alice", "OpenID"},
	}
	for _, tc := range cases {
		p := Extract(tc.identifier, nil, nil)
		require.Equal(t, tc.provider, p.ProviderName, tc.identifier)
		require.Equal(t, tc.identifier, p.Identifier)
	}
}

func TestExtract_ExchangeWinsOverRegistration(t *testing.T) {
	sreg := SRegResponse{"nickname": "sreg-nick"}
	ax := AXResponse{axNickname: "ax-nick"}

	p := Extract("https://example-provider/alice", sreg, ax)
	require.Equal(t, "ax-nick", p.PreferredUsername)
}

func TestExtract_RegistrationFallbackUsesTranslation(t *testing.T) {
	// full_name translates to the sreg field "fullname"; birthday to "dob".
	sreg := SRegResponse{"fullname": "Alice Liddell", "dob": "1990-01-02"}

	p := Extract("https://example-provider/alice", sreg, nil)
	require.Equal(t, "Alice Liddell", p.DisplayName)
	require.NotNil(t, p.Name)
	require.Equal(t, "Alice Liddell", p.Name.Formatted)
	require.Equal(t, "1990-01-02", p.Birthday)
}

func TestExtract_GooglePreferredUsernameFromEmail(t *testing.T) {
	ax := AXResponse{axEmail: "alice@example.com"}

	p := Extract("https://www.google.com/accounts/o8/id?id=xyz", nil, ax)
	require.Equal(t, "alice", p.PreferredUsername)
	require.Equal(t, "alice@example.com", p.VerifiedEmail)
}

func TestExtract_GoogleWithoutEmailOmitsUsername(t *testing.T) {
	p := Extract("https://www.google.com/accounts/o8/id?id=xyz", nil, nil)
	require.Empty(t, p.PreferredUsername)
	require.Empty(t, p.VerifiedEmail)
}

func TestExtract_VerifiedEmailIsExchangeOnly(t *testing.T) {
	// An email arriving only over Simple Registration must not count as
	// verified, even for trusted providers.
	sreg := SRegResponse{"email": "alice@example.com"}

	p := Extract("https://me.yahoo.com/a/abc", sreg, nil)
	require.Empty(t, p.VerifiedEmail)

	ax := AXResponse{axEmail: "alice@example.com"}
	p = Extract("https://me.yahoo.com/a/abc", nil, ax)
	require.Equal(t, "alice@example.com", p.VerifiedEmail)
}

func TestExtract_NoVerifiedEmailForGenericProvider(t *testing.T) {
	ax := AXResponse{axEmail: "alice@example.com"}

	p := Extract("https://example-provider/alice", nil, ax)
	require.Empty(t, p.VerifiedEmail)
}

func TestExtract_NamePartsBuildFormattedName(t *testing.T) {
	ax := AXResponse{
		axPrefix:    "Dr",
		axFirstName: "Alice",
		axLastName:  "Liddell",
	}

	p := Extract("https://example-provider/alice", nil, ax)
	require.NotNil(t, p.Name)
	require.Equal(t, "Dr", p.Name.HonorificPrefix)
	require.Equal(t, "Alice", p.Name.GivenName)
	require.Equal(t, "Liddell", p.Name.FamilyName)
	require.Equal(t, "Dr Alice Liddell", p.Name.Formatted)
	require.Equal(t, "Dr Alice Liddell", p.DisplayName)
}

func TestExtract_FullNameFallbackWhenNoParts(t *testing.T) {
	ax := AXResponse{axFullName: "Alice Liddell"}

	p := Extract("https://example-provider/alice", nil, ax)
	require.NotNil(t, p.Name)
	require.Equal(t, "Alice Liddell", p.Name.Formatted)
	require.Equal(t, "Alice Liddell", p.DisplayName)
}

func TestExtract_DisplayNameFallsBackToUsername(t *testing.T) {
	sreg := SRegResponse{"nickname": "alice"}

	p := Extract("https://example-provider/alice", sreg, nil)
	require.Nil(t, p.Name)
	require.Equal(t, "alice", p.DisplayName)
}

func TestExtract_URLsFromWebAttribute(t *testing.T) {
	ax := AXResponse{axWeb: "https://alice.example"}

	p := Extract("https://example-provider/alice", nil, ax)
	require.Equal(t, []string{"https://alice.example"}, p.URLs)
}

func TestExtract_EmptySourcesEmitNoEmptyFields(t *testing.T) {
	p := Extract("https://example-provider/alice", nil, nil)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	// Only identifier and providerName survive; no key maps to an empty
	// value.
	require.Len(t, doc, 2)
	for key, value := range doc {
		require.NotEmpty(t, value, key)
	}
}

func TestExtract_MarshalledProfileOmitsAbsentKeys(t *testing.T) {
	ax := AXResponse{axBirthday: "1990-01-02"}

	raw, err := json.Marshal(Extract("https://example-provider/alice", nil, ax))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "birthday")
	require.NotContains(t, doc, "gender")
	require.NotContains(t, doc, "verifiedEmail")
	require.NotContains(t, doc, "name")
	require.NotContains(t, doc, "urls")
}

func TestExtract_UnknownSRegFieldIgnored(t *testing.T) {
	// postal_code translates to "postcode", which is a recognized field,
	// but it feeds no canonical output; a non-sreg name like "web" must
	// never be read from the registration response.
	sreg := SRegResponse{"web": "https://alice.example"}

	p := Extract("https://example-provider/alice", sreg, nil)
	require.Nil(t, p.URLs)
}
