// Package display normalises how teams are shown: short code, flag emoji and label.
package display

import (
	"fmt"
	"regexp"
	"strings"
)

// Info is whatever a feed told us about a team
type Info struct {
	Name      string
	ShortName string
	Code      string
	Flag      string // emoji supplied by the feed, if any
}

type meta struct {
	code    string
	country string // ISO 3166 alpha-2, empty when there is no single flag
}

// ⭐ SSOT: known team codes and their flag countries
var metaByCode = map[string]meta{
	"IND":  {"IND", "IN"},
	"SA":   {"SA", "ZA"},
	"ENG":  {"ENG", "GB"},
	"WI":   {"WI", ""},
	"ZIM":  {"ZIM", "ZW"},
	"AUS":  {"AUS", "AU"},
	"NZ":   {"NZ", "NZ"},
	"PAK":  {"PAK", "PK"},
	"SL":   {"SL", "LK"},
	"BAN":  {"BAN", "BD"},
	"AFG":  {"AFG", "AF"},
	"IRE":  {"IRE", "IE"},
	"USA":  {"USA", "US"},
	"CAN":  {"CAN", "CA"},
	"NED":  {"NED", "NL"},
	"SCO":  {"SCO", "GB"},
	"NEP":  {"NEP", "NP"},
	"UAE":  {"UAE", "AE"},
	"OMAN": {"OMAN", "OM"},
	"NAM":  {"NAM", "NA"},
	"PNG":  {"PNG", "PG"},
}

// matched in order, first substring hit wins
var codeByName = []struct {
	name string
	code string
}{
	{"india", "IND"},
	{"west indies", "WI"},
	{"south africa", "SA"},
	{"zimbabwe", "ZIM"},
	{"england", "ENG"},
	{"australia", "AUS"},
	{"new zealand", "NZ"},
	{"pakistan", "PAK"},
	{"sri lanka", "SL"},
	{"bangladesh", "BAN"},
	{"afghanistan", "AFG"},
	{"ireland", "IRE"},
	{"usa", "USA"},
	{"canada", "CAN"},
	{"netherlands", "NED"},
	{"scotland", "SCO"},
	{"nepal", "NEP"},
	{"united arab emirates", "UAE"},
	{"oman", "OMAN"},
	{"namibia", "NAM"},
	{"papua new guinea", "PNG"},
}

var (
	codeLike     = regexp.MustCompile(`^[A-Za-z]{2,4}$`)
	leadingCode  = regexp.MustCompile(`^([A-Za-z]{2,4})\b`)
	plainASCII   = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
	regionalBase = rune(127397) // 'A' + base = REGIONAL INDICATOR SYMBOL LETTER A
)

// Code returns the short team code.
// Order: a known or code-like short field, a known code leading the name,
// a known country name inside the name, then initials.
func Code(info Info) string {
	for _, candidate := range []string{info.Code, info.ShortName} {
		c := strings.ToUpper(strings.TrimSpace(candidate))
		if c == "" {
			continue
		}
		if _, ok := metaByCode[c]; ok {
			return c
		}
		if codeLike.MatchString(c) {
			return c
		}
	}

	raw := strings.TrimSpace(info.Name)
	if m := leadingCode.FindStringSubmatch(raw); m != nil {
		c := strings.ToUpper(m[1])
		if _, ok := metaByCode[c]; ok {
			return c
		}
	}

	name := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	for _, entry := range codeByName {
		if strings.Contains(name, entry.name) {
			return entry.code
		}
	}

	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		r := []rune(parts[0])
		if len(r) > 3 {
			r = r[:3]
		}
		return strings.ToUpper(string(r))
	}

	var b strings.Builder
	for i, p := range parts {
		if i == 3 {
			break
		}
		b.WriteRune([]rune(p)[0])
	}
	return strings.ToUpper(b.String())
}

// Flag returns the emoji flag for a team, or "".
// A mapped country always wins over a feed-supplied flag.
func Flag(info Info) string {
	if m, ok := metaByCode[Code(info)]; ok && m.country != "" {
		return emoji(m.country)
	}

	provided := strings.TrimSpace(info.Flag)
	if provided != "" && !plainASCII.MatchString(provided) {
		return provided
	}
	return ""
}

// FlagURL returns a 40px flag image, or "" when no country is mapped
func FlagURL(info Info) string {
	m, ok := metaByCode[Code(info)]
	if !ok || m.country == "" {
		return ""
	}
	return fmt.Sprintf("https://flagcdn.com/w40/%s.png", strings.ToLower(m.country))
}

// Label is "IND 🇮🇳", or just the code without a flag
func Label(info Info) string {
	code := Code(info)
	if flag := Flag(info); flag != "" {
		return code + " " + flag
	}
	return code
}

func emoji(country string) string {
	if len(country) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(country) {
		b.WriteRune(regionalBase + c)
	}
	return b.String()
}
