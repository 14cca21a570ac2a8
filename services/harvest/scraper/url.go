package scraper

import (
	"strings"

	"vitiharvest-backend/services/harvest/query"
)

// DefaultBaseUrl is the VitiBrasil page every dataset hangs off of.
const DefaultBaseUrl = "http://vitibrasil.cnpuv.embrapa.br/index.php"

// BuildUrl renders a validated descriptor into the upstream's URL scheme.
// The descriptor's canonical fields are already query fragments, so this is
// plain concatenation: <base>?<option>&<year>[&<sub-option>].
func BuildUrl(base string, d query.Descriptor) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?")
	b.WriteString(d.Option)
	b.WriteString("&")
	b.WriteString(d.Year)
	if d.SubOption != "" {
		b.WriteString("&")
		b.WriteString(d.SubOption)
	}
	return b.String()
}
