// Package query validates raw filter parameters and turns them into a
// canonical, immutable descriptor for the VitiBrasil upstream.
//
// Validation runs as a pipeline of pure steps in a fixed order
// (option, then year, then sub-option). Each step takes the state produced
// by the previous one and either refines it or stops the whole pipeline
// with a typed error; a partially validated descriptor is never returned.
package query

import (
	"fmt"
	"strconv"
)

// Option is the top-level dataset selector.
type Option string

const (
	Producao        Option = "producao"
	Processamento   Option = "processamento"
	Comercializacao Option = "comercializacao"
	Importacao      Option = "importacao"
	Exportacao      Option = "exportacao"
)

// Options lists every valid option in declaration order.
func Options() []Option {
	return []Option{Producao, Processamento, Comercializacao, Importacao, Exportacao}
}

var optionCodes = map[Option]string{
	Producao:        "opt_02",
	Processamento:   "opt_03",
	Comercializacao: "opt_04",
	Importacao:      "opt_05",
	Exportacao:      "opt_06",
}

// sub-option codes are positional: subopt_01.. in declaration order
var subOptions = map[Option][]string{
	Processamento: {"viniferas", "americanas_e_hibridas", "uvas_de_mesa", "sem_classificacao"},
	Importacao:    {"vinhos_de_mesa", "espumantes", "uvas_frescas", "uvas_passas", "suco_de_uva"},
	Exportacao:    {"vinhos_de_mesa", "espumantes", "uvas_frescas", "suco_de_uva"},
}

const FirstYear = 1970

// LastYear returns the most recent year the upstream publishes for o.
func (o Option) LastYear() int {
	switch o {
	case Importacao, Exportacao:
		return 2024
	default:
		return 2023
	}
}

// SubOptions returns o's valid sub-options in declaration order,
// or nil when o takes none.
func (o Option) SubOptions() []string {
	return subOptions[o]
}

// Discipline tells how the upstream lays out the body of o's data table.
type Discipline int

const (
	// items and sub-items nested under category rows
	DisciplineCategory Discipline = iota
	// flat (country, quantity, value) rows
	DisciplineCountry
)

func (o Option) Discipline() Discipline {
	if o == Importacao || o == Exportacao {
		return DisciplineCountry
	}
	return DisciplineCategory
}

// Descriptor is a validated harvest request. Canonical fields are
// upstream-ready query fragments; Original fields keep the user-facing
// values (or the defaults substituted in their place) for echoes and
// fallback lookups.
type Descriptor struct {
	Option    string
	Year      string
	SubOption string

	OriginalOption    Option
	OriginalYear      string
	OriginalSubOption string
}

// Validate runs the full validation pipeline over raw request parameters.
// Only the keys "option", "year" and "sub_option" are accepted.
func Validate(params map[string]string) (Descriptor, error) {
	for key := range params {
		switch key {
		case "option", "year", "sub_option":
		default:
			return Descriptor{}, &UnknownParameterError{Key: key}
		}
	}

	d, err := validateOption(params["option"])
	if err != nil {
		return Descriptor{}, err
	}
	year, yearGiven := params["year"]
	d, err = validateYear(d, year, yearGiven)
	if err != nil {
		return Descriptor{}, err
	}
	d, err = validateSubOption(d, params["sub_option"])
	if err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func validateOption(raw string) (Descriptor, error) {
	code, ok := optionCodes[Option(raw)]
	if !ok {
		return Descriptor{}, &InvalidOptionError{Given: raw, Allowed: Options()}
	}
	return Descriptor{
		Option:         "opcao=" + code,
		OriginalOption: Option(raw),
	}, nil
}

// An absent year defaults to the option's most recent one; a year that was
// supplied, even as an empty string, must parse.
func validateYear(d Descriptor, raw string, given bool) (Descriptor, error) {
	if raw == "" && !given {
		raw = strconv.Itoa(d.OriginalOption.LastYear())
	} else {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Descriptor{}, &InvalidYearError{Given: raw}
		}
		min, max := FirstYear, d.OriginalOption.LastYear()
		if year < min || year > max {
			return Descriptor{}, &YearOutOfRangeError{
				Option: d.OriginalOption,
				Year:   year,
				Min:    min,
				Max:    max,
			}
		}
	}
	d.OriginalYear = raw
	d.Year = "ano=" + raw
	return d, nil
}

func validateSubOption(d Descriptor, raw string) (Descriptor, error) {
	valid := d.OriginalOption.SubOptions()
	if len(valid) == 0 {
		if raw != "" {
			return Descriptor{}, &SubOptionNotAllowedError{Option: d.OriginalOption}
		}
		return d, nil
	}

	if raw == "" {
		raw = valid[0]
	}
	position := -1
	for i, sub := range valid {
		if sub == raw {
			position = i
			break
		}
	}
	if position < 0 {
		return Descriptor{}, &InvalidSubOptionError{
			Option:  d.OriginalOption,
			Given:   raw,
			Allowed: valid,
		}
	}
	d.OriginalSubOption = raw
	d.SubOption = fmt.Sprintf("subopcao=subopt_%02d", position+1)
	return d, nil
}
