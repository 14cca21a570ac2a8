package harvest

import "vitiharvest-backend/services/harvest/query"

// OptionReference describes everything a caller may pass for one option.
// Validation failures point users here.
type OptionReference struct {
	Option     query.Option `json:"option"`
	FirstYear  int          `json:"first_year"`
	LastYear   int          `json:"last_year"`
	SubOptions []string     `json:"sub_options,omitempty"`
}

// Reference lists the valid parameter space, one entry per option in
// declaration order.
func Reference() []OptionReference {
	var refs []OptionReference
	for _, opt := range query.Options() {
		refs = append(refs, OptionReference{
			Option:     opt,
			FirstYear:  query.FirstYear,
			LastYear:   opt.LastYear(),
			SubOptions: opt.SubOptions(),
		})
	}
	return refs
}
