// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package langmap

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RemoteLanguage is an entry of the Localazy language catalog.
type RemoteLanguage struct {
	ID     int    `json:"id"`
	Locale string `json:"locale"`
	Name   string `json:"name"`
}

// Catalog resolves Localazy numeric language ids and locales.
type Catalog struct {
	byID     map[int]RemoteLanguage
	byLocale map[string]RemoteLanguage
}

// catalogEntries lists the Localazy languages known to the service,
// keyed by their numeric id.
var catalogEntries = map[int]string{
	1025:  "ar",
	1026:  "bg",
	1027:  "ca",
	1028:  "zh_Hant",
	1029:  "cs",
	1030:  "da",
	1031:  "de",
	1032:  "el",
	1033:  "en",
	1034:  "es",
	1035:  "fi",
	1036:  "fr",
	1037:  "he",
	1038:  "hu",
	1039:  "is",
	1040:  "it",
	1041:  "ja",
	1042:  "ko",
	1043:  "nl",
	1044:  "nb",
	1045:  "pl",
	1046:  "pt_BR",
	1048:  "ro",
	1049:  "ru",
	1050:  "hr",
	1051:  "sk",
	1053:  "sv",
	1054:  "th",
	1055:  "tr",
	1056:  "ur",
	1057:  "id",
	1058:  "uk",
	1060:  "sl",
	1061:  "et",
	1062:  "lv",
	1063:  "lt",
	1065:  "fa",
	1066:  "vi",
	1067:  "hy",
	1068:  "az",
	1069:  "eu",
	1076:  "xh",
	1077:  "zu",
	1078:  "af",
	1079:  "ka",
	1081:  "hi",
	1086:  "ms",
	1087:  "kk",
	1089:  "sw",
	1097:  "ta",
	1098:  "te",
	1104:  "mn",
	1106:  "cy",
	1107:  "km",
	1108:  "lo",
	1109:  "my",
	1110:  "gl",
	1115:  "si",
	1118:  "am",
	1121:  "ne",
	2052:  "zh_Hans",
	2055:  "de_CH",
	2057:  "en_GB",
	2070:  "pt",
	2108:  "ga",
	2117:  "bn",
	3079:  "de_AT",
	3084:  "fr_CA",
	4105:  "en_CA",
	3081:  "en_AU",
	9242:  "sr_Latn",
	10266: "sr_Cyrl",
	22538: "es_419",
}

// DefaultCatalog returns the built-in Localazy language catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(catalogEntries)
}

// NewCatalog builds a catalog from an id to locale table. Display names
// are taken from CLDR.
func NewCatalog(entries map[int]string) *Catalog {
	c := &Catalog{
		byID:     make(map[int]RemoteLanguage, len(entries)),
		byLocale: make(map[string]RemoteLanguage, len(entries)),
	}
	namer := display.English.Tags()
	for id, locale := range entries {
		lang := RemoteLanguage{ID: id, Locale: locale, Name: locale}
		if tag, err := language.Parse(localeToTag(locale)); err == nil {
			if name := namer.Name(tag); name != "" {
				lang.Name = name
			}
		}
		c.byID[id] = lang
		c.byLocale[locale] = lang
	}
	return c
}

// ByID looks up a language by its Localazy id.
func (c *Catalog) ByID(id int) (RemoteLanguage, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// ByLocale looks up a language by its Localazy locale.
func (c *Catalog) ByLocale(locale string) (RemoteLanguage, bool) {
	l, ok := c.byLocale[locale]
	return l, ok
}

// IsRecognized reports whether code, in either convention, is a Localazy locale.
func (c *Catalog) IsRecognized(code string) bool {
	if _, ok := c.byLocale[code]; ok {
		return true
	}
	_, ok := c.byLocale[strings.Replace(code, "-", "_", 1)]
	return ok
}

// All returns the catalog sorted by locale.
func (c *Catalog) All() []RemoteLanguage {
	out := make([]RemoteLanguage, 0, len(c.byID))
	for _, l := range c.byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locale < out[j].Locale })
	return out
}

func localeToTag(locale string) string {
	tag, _, _ := strings.Cut(locale, "#")
	return strings.ReplaceAll(tag, "_", "-")
}

// SourceLanguageToRemote returns the Localazy locale of the project source
// language, falling back to the configured content-store source language
// when the catalog does not know the id.
func SourceLanguageToRemote(c *Catalog, remoteSourceID int, configuredSource string) string {
	if l, ok := c.ByID(remoteSourceID); ok {
		return l.Locale
	}
	return configuredSource
}

// RemoteToSourceLanguage maps an already converted code back to the
// configured source language when it is the project source language.
func RemoteToSourceLanguage(c *Catalog, processed string, remoteSourceID int, configuredSource string) string {
	if l, ok := c.ByID(remoteSourceID); ok && l.Locale == processed {
		return configuredSource
	}
	return processed
}

// DisplayName returns the English name of a language code in either
// convention, or the code itself when it cannot be parsed.
func DisplayName(code string) string {
	tag, err := language.Parse(localeToTag(code))
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
