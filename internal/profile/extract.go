// Package profile normalizes heterogeneous OpenID attribute responses into
// the canonical user profile shape delivered to calling applications.
package profile

import (
	"strings"

	"github.com/datanav/velruse/internal/domain"
)

// SRegResponse is a flat Simple Registration response keyed by field name.
type SRegResponse map[string]string

// AXResponse is an Attribute Exchange response keyed by attribute type URI.
type AXResponse map[string]string

// AXAttributes maps logical attribute names to their registered AX type URIs.
// This is the fixed set requested from providers and probed during extraction.
var AXAttributes = map[string]string{
	"nickname":    "http://axschema.org/namePerson/friendly",
	"email":       "http://axschema.org/contact/email",
	"full_name":   "http://axschema.org/namePerson",
	"birthday":    "http://axschema.org/birthDate",
	"gender":      "http://axschema.org/person/gender",
	"postal_code": "http://axschema.org/contact/postalCode/home",
	"country":     "http://axschema.org/contact/country/home",
	"timezone":    "http://axschema.org/pref/timezone",
	"language":    "http://axschema.org/pref/language",
	"name_prefix": "http://axschema.org/namePerson/prefix",
	"first_name":  "http://axschema.org/namePerson/first",
	"last_name":   "http://axschema.org/namePerson/last",
	"middle_name": "http://axschema.org/namePerson/middle",
	"name_suffix": "http://axschema.org/namePerson/suffix",
	"web":         "http://axschema.org/contact/web/default",
}

// sregTranslation renames logical attribute names to their Simple
// Registration equivalents before the fallback lookup.
var sregTranslation = map[string]string{
	"full_name":   "fullname",
	"birthday":    "dob",
	"postal_code": "postcode",
}

// sregFields is the finite set of field names Simple Registration defines.
// Lookups outside this set never touch the SReg response.
var sregFields = map[string]struct{}{
	"nickname": {},
	"email":    {},
	"fullname": {},
	"dob":      {},
	"gender":   {},
	"postcode": {},
	"country":  {},
	"language": {},
	"timezone": {},
}

// attribs resolves logical attribute names against the two optional
// responses, AX first and SReg as fallback.
type attribs struct {
	sreg SRegResponse
	ax   AXResponse
}

func (a attribs) get(key string) string {
	return a.lookup(key, false)
}

func (a attribs) getAXOnly(key string) string {
	return a.lookup(key, true)
}

func (a attribs) lookup(key string, axOnly bool) string {
	if uri, ok := AXAttributes[key]; ok {
		if v := a.ax[uri]; v != "" {
			return v
		}
	}
	if axOnly {
		return ""
	}
	if renamed, ok := sregTranslation[key]; ok {
		key = renamed
	}
	if _, ok := sregFields[key]; !ok {
		return ""
	}
	return a.sreg[key]
}

// providerRules is the ordered identifier-substring inference table.
var providerRules = []struct {
	substring string
	name      string
}{
	{"google.com", "Google"},
	{"yahoo.com", "Yahoo"},
}

func inferProvider(identifier string) string {
	for _, rule := range providerRules {
		if strings.Contains(identifier, rule.substring) {
			return rule.name
		}
	}
	return "OpenID"
}

// name part extraction order matters: parts are appended to the formatted
// name in this sequence.
var nameParts = []struct {
	key    string
	assign func(*domain.Name, string)
}{
	{"name_prefix", func(n *domain.Name, v string) { n.HonorificPrefix = v }},
	{"first_name", func(n *domain.Name, v string) { n.GivenName = v }},
	{"middle_name", func(n *domain.Name, v string) { n.MiddleName = v }},
	{"last_name", func(n *domain.Name, v string) { n.FamilyName = v }},
	{"name_suffix", func(n *domain.Name, v string) { n.HonorificSuffix = v }},
}

// Extract merges the two optional attribute responses into a canonical
// profile. It is a pure function of its inputs and never fails: absent
// source data simply yields absent output fields.
func Extract(identifier string, sreg SRegResponse, ax AXResponse) *domain.Profile {
	a := attribs{sreg: sreg, ax: ax}

	p := &domain.Profile{
		Identifier:   identifier,
		ProviderName: inferProvider(identifier),
	}

	if p.ProviderName == "Google" {
		// Google returns no usable nickname, so the local part of the email
		// stands in for the username. Missing email leaves the field absent.
		if email := a.get("email"); email != "" {
			if at := strings.Index(email, "@"); at > 0 {
				p.PreferredUsername = email[:at]
			}
		}
	} else {
		p.PreferredUsername = a.get("nickname")
	}

	// Only Google and Yahoo are trusted to have verified the email address,
	// and only when it arrives over AX.
	if p.ProviderName == "Google" || p.ProviderName == "Yahoo" {
		p.VerifiedEmail = a.getAXOnly("email")
	}

	name := &domain.Name{}
	var formatted []string
	for _, part := range nameParts {
		if v := a.get(part.key); v != "" {
			formatted = append(formatted, v)
			part.assign(name, v)
		}
	}
	fullName := strings.TrimSpace(strings.Join(formatted, " "))
	if fullName == "" {
		fullName = a.get("full_name")
	}
	name.Formatted = fullName
	if !name.Empty() {
		p.Name = name
	}

	p.DisplayName = fullName
	if p.DisplayName == "" {
		p.DisplayName = p.PreferredUsername
	}

	if web := a.get("web"); web != "" {
		p.URLs = []string{web}
	}

	p.Gender = a.get("gender")
	p.Birthday = a.get("birthday")

	return p
}
