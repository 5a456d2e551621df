package openid

import (
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strings"
)

// Auto-submitting forms carry the flow forward without user interaction:
// token delivery back to the caller's end point, and provider auth requests
// that cannot be expressed as a GET redirect.
var autoSubmitTmpl = template.Must(template.New("autosubmit").Parse(`<html>
<head><title>OpenID transaction in progress</title></head>
<body onload="document.forms[0].submit();">
<form action="{{.Action}}" method="post" accept-charset="UTF-8">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}" />
{{- end}}
<input type="submit" value="Continue" />
</form>
</body>
</html>
`))

type formField struct {
	Name  string
	Value string
}

type formData struct {
	Action string
	Fields []formField
}

func renderAutoSubmit(action string, fields []formField) (string, error) {
	var b strings.Builder
	if err := autoSubmitTmpl.Execute(&b, formData{Action: action, Fields: fields}); err != nil {
		return "", fmt.Errorf("render form: %w", err)
	}
	return b.String(), nil
}

// RedirectForm renders the auto-submitting form that posts the minted token
// to the caller's end point.
func RedirectForm(endPoint, token string) (string, error) {
	return renderAutoSubmit(endPoint, []formField{{Name: "token", Value: token}})
}

// authRequestForm turns a provider URL with query parameters into an
// auto-submitting POST form, for protocol steps that forbid redirects.
func authRequestForm(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse auth url: %w", err)
	}
	query := u.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]formField, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, formField{Name: key, Value: query.Get(key)})
	}
	u.RawQuery = ""
	return renderAutoSubmit(u.String(), fields)
}
