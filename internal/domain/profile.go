package domain

// Name holds the structured portable-contact name parts. Empty parts are
// omitted from the JSON representation.
type Name struct {
	Formatted       string `json:"formatted,omitempty"`
	HonorificPrefix string `json:"honorificPrefix,omitempty"`
	GivenName       string `json:"givenName,omitempty"`
	MiddleName      string `json:"middleName,omitempty"`
	FamilyName      string `json:"familyName,omitempty"`
	HonorificSuffix string `json:"honorificSuffix,omitempty"`
}

// Empty reports whether no part of the name is populated.
func (n *Name) Empty() bool {
	if n == nil {
		return true
	}
	return n.Formatted == "" && n.HonorificPrefix == "" && n.GivenName == "" &&
		n.MiddleName == "" && n.FamilyName == "" && n.HonorificSuffix == ""
}

// Profile is the canonical user profile assembled from provider attribute
// responses. Every populated field carries a non-empty value; absent source
// data leaves the field out of the marshalled document entirely.
type Profile struct {
	Identifier        string   `json:"identifier,omitempty"`
	ProviderName      string   `json:"providerName,omitempty"`
	PreferredUsername string   `json:"preferredUsername,omitempty"`
	VerifiedEmail     string   `json:"verifiedEmail,omitempty"`
	DisplayName       string   `json:"displayName,omitempty"`
	Name              *Name    `json:"name,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	Birthday          string   `json:"birthday,omitempty"`
	URLs              []string `json:"urls,omitempty"`
}

// Result statuses delivered back to the calling application.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Result is the envelope stored against a minted token and handed back to
// the caller through the auto-submitting form exchange. Code is a pointer so
// category 0 still marshals on failure envelopes.
type Result struct {
	Status      string         `json:"status"`
	Profile     *Profile       `json:"profile,omitempty"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Code        *int           `json:"code,omitempty"`
}

// OKResult builds a success envelope.
func OKResult(profile *Profile, credentials map[string]any) Result {
	return Result{Status: StatusOK, Profile: profile, Credentials: credentials}
}

// FailedResult builds a categorized failure envelope.
func FailedResult(code int) Result {
	return Result{Status: StatusFailed, Code: &code}
}
