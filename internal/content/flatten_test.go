// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-localazy/internal/model"
)

func intPtr(n int) *int { return &n }

func article(id float64, rows ...map[string]any) model.Item {
	translations := make([]any, 0, len(rows))
	for _, r := range rows {
		translations = append(translations, r)
	}
	return model.Item{"id": id, "translations": translations}
}

func baseInput(items ...model.Item) FlattenInput {
	return FlattenInput{
		Collection:        "articles",
		Items:             items,
		Relations:         []TranslationRelation{{Field: "translations", LanguageField: "languages_code"}},
		EnabledFields:     []string{"title", "body"},
		Schema:            map[string]model.Field{"title": {Field: "title", MaxLength: intPtr(80), Comment: "Headline"}},
		Languages:         []string{"en", "de"},
		SourceLanguage:    "en",
		LanguageCodeField: "code",
		SkipEmpty:         true,
	}
}

func TestFlattenCollection_SourceAndOtherLanguages(t *testing.T) {
	in := baseInput(article(1,
		map[string]any{"id": 10.0, "languages_code": "en", "title": "Hello", "body": "World", "slug": "hello"},
		map[string]any{"id": 11.0, "languages_code": map[string]any{"code": "de", "name": "German"}, "title": "Hallo"},
		map[string]any{"id": 12.0, "languages_code": "fr", "title": "Bonjour"},
	))

	got := FlattenCollection(in)

	src := got.SourceLanguage["articles"].(Entry)["1"].(Entry)["translations"].(Entry)
	assert.Equal(t, "Hello", src["title"])
	assert.Equal(t, "World", src["body"])
	assert.NotContains(t, src, "slug")

	meta := src["@title"].(map[string]any)
	assert.Equal(t, 80, meta["limit"])
	assert.Equal(t, "Headline", meta["comment"])
	origin := meta["add"].(map[string]any)["source"].(map[string]any)
	assert.Equal(t, "articles", origin["collection"])
	assert.Equal(t, "translations", origin["relation_field"])
	assert.Equal(t, "title", origin["field"])
	assert.Equal(t, 1.0, origin["itemId"])

	bodyMeta := src["@body"].(map[string]any)
	assert.NotContains(t, bodyMeta, "limit")

	de := got.OtherLanguages["de"]["articles"].(Entry)["1"].(Entry)["translations"].(Entry)
	assert.Equal(t, Entry{"title": "Hallo"}, de)
	assert.NotContains(t, got.OtherLanguages, "fr")
	assert.Equal(t, []string{"de"}, got.Languages())
}

func TestFlattenCollection_SkipEmptyStrings(t *testing.T) {
	in := baseInput(article(1, map[string]any{"languages_code": "en", "title": "", "body": "Text"}))

	got := FlattenCollection(in)
	src := got.SourceLanguage["articles"].(Entry)["1"].(Entry)["translations"].(Entry)
	assert.NotContains(t, src, "title")
	assert.NotContains(t, src, "@title")
	assert.Equal(t, "Text", src["body"])

	in.SkipEmpty = false
	got = FlattenCollection(in)
	src = got.SourceLanguage["articles"].(Entry)["1"].(Entry)["translations"].(Entry)
	assert.Equal(t, "", src["title"])
	assert.Contains(t, src, "@title")
}

func TestFlattenCollection_OnlyEmptyFieldYieldsNothing(t *testing.T) {
	in := baseInput(article(7, map[string]any{"languages_code": "en", "title": ""}))
	got := FlattenCollection(in)
	assert.True(t, got.Empty())
}

func TestFlattenCollection_MergeOfDisjointSetsEqualsUnion(t *testing.T) {
	a := article(1,
		map[string]any{"languages_code": "en", "title": "One"},
		map[string]any{"languages_code": "de", "title": "Eins"},
	)
	b := article(2,
		map[string]any{"languages_code": "en", "title": "Two", "body": "Zwei body"},
	)

	union := FlattenCollection(baseInput(a, b))

	ab := FlattenCollection(baseInput(a))
	ab.Merge(FlattenCollection(baseInput(b)))
	ba := FlattenCollection(baseInput(b))
	ba.Merge(FlattenCollection(baseInput(a)))

	assert.Equal(t, union, ab)
	assert.Equal(t, union, ba)
}

func TestFlattenCollection_IgnoresMalformedRows(t *testing.T) {
	items := []model.Item{
		{"translations": []any{map[string]any{"languages_code": "en", "title": "no id"}}},
		{"id": "x", "translations": "not a list"},
		{"id": "y", "translations": []any{"string row", map[string]any{"languages_code": 5, "title": "bad ref"}}},
	}
	in := baseInput(items...)
	assert.True(t, FlattenCollection(in).Empty())
}

func TestFlattenTranslationStrings(t *testing.T) {
	strs := []model.TranslationString{
		{ID: "s1", Key: "greeting", Translations: map[string]string{"en": "Hello", "de": "Hallo", "fr": "Salut"}},
		{Key: "legacy", Translations: map[string]string{"en": "", "de": "Alt"}},
	}

	got := FlattenTranslationStrings(strs, []string{"en", "de"}, "en", true)

	src := got.SourceLanguage[TranslationStringsCollection].(Entry)
	greeting := src["s1"].(Entry)
	assert.Equal(t, "Hello", greeting["greeting"])
	origin := greeting["@greeting"].(map[string]any)["add"].(map[string]any)["source"].(map[string]any)
	assert.Equal(t, "s1", origin["itemId"])
	assert.NotContains(t, src, "legacy")

	de := got.OtherLanguages["de"][TranslationStringsCollection].(Entry)
	assert.Equal(t, "Alt", de["legacy"].(Entry)["legacy"])
	assert.NotContains(t, got.OtherLanguages, "fr")
}

func TestLanguageRef(t *testing.T) {
	ref, ok := LanguageRefOf("en-US")
	require.True(t, ok)
	assert.False(t, ref.IsExpanded())
	code, ok := ResolveLanguage(ref, "code")
	assert.True(t, ok)
	assert.Equal(t, "en-US", code)

	ref, ok = LanguageRefOf(map[string]any{"code": "de", "name": "German"})
	require.True(t, ok)
	assert.True(t, ref.IsExpanded())
	code, ok = ResolveLanguage(ref, "code")
	assert.True(t, ok)
	assert.Equal(t, "de", code)

	_, ok = ResolveLanguage(ref, "iso")
	assert.False(t, ok)

	_, ok = LanguageRefOf(42.0)
	assert.False(t, ok)
	_, ok = ResolveLanguage(Inline(""), "code")
	assert.False(t, ok)
	_, ok = ResolveLanguage(LanguageRef{}, "code")
	assert.False(t, ok)
}
