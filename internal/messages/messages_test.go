package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  language.Tag
	}{
		{"no preference", nil, language.English},
		{"empty string", []string{""}, language.English},
		{"spanish", []string{"es"}, language.Spanish},
		{"regional spanish", []string{"es-MX"}, language.Spanish},
		{"accept-language header", []string{"es-AR,es;q=0.9,en;q=0.8"}, language.Spanish},
		{"english first", []string{"en-GB,es;q=0.5"}, language.English},
		{"unsupported", []string{"fr"}, language.English},
		{"garbage ignored", []string{"!!not a tag", "es"}, language.Spanish},
		{"first usable preference wins", []string{"", "es", "en"}, language.Spanish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.prefs...))
		})
	}
}

func TestLocales_HaveSameKeys(t *testing.T) {
	ClearCache()

	en, err := LoadBundle(language.English)
	require.NoError(t, err)
	es, err := LoadBundle(language.Spanish)
	require.NoError(t, err)

	enKeys, err := Keys(language.English)
	require.NoError(t, err)
	esKeys, err := Keys(language.Spanish)
	require.NoError(t, err)
	assert.Equal(t, enKeys, esKeys)

	assert.Len(t, en.Categories, len(es.Categories))
	for name := range en.Categories {
		assert.Contains(t, es.Categories, name)
	}
}

func TestLoadBundle_Unsupported(t *testing.T) {
	_, err := LoadBundle(language.Japanese)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read locale file")
}

func TestPrinter_Sprintf(t *testing.T) {
	en := NewPrinter(language.English)
	es := NewPrinter(language.MustParse("es-ES"))

	assert.Equal(t, language.Spanish, es.Tag())
	assert.Equal(t, "Your experience level (senior) matches the requirement", en.Sprintf(ExperienceMatch, "senior"))
	assert.Equal(t, "Tu nivel de experiencia (senior) coincide con lo requerido", es.Sprintf(ExperienceMatch, "senior"))
	assert.Equal(t, "You have 75.5% professional context - this is highly valued", en.Sprintf(ContextProfessional, "75.5"))
	assert.Equal(t, "Faltan 6 tecnologías requeridas. Prioriza aprender las más críticas para este rol", es.Sprintf(MissingMany, 6))
}

func TestPrinter_UnsupportedFallsBackToEnglish(t *testing.T) {
	p := NewPrinter(language.French)
	assert.Equal(t, language.English, p.Tag())
	assert.Equal(t, "Analysis completed successfully", p.Sprintf(AnalysisComplete))
}

func TestPrinter_Category(t *testing.T) {
	en := NewPrinter(language.English)
	es := NewPrinter(language.Spanish)

	assert.Equal(t, "Programming languages", en.Category("programming_languages"))
	assert.Equal(t, "Lenguajes de programación", es.Category("programming_languages"))
	assert.Equal(t, "Data Science/ML", es.Category("data_science_ml"))
	assert.Equal(t, "Game Engines", en.Category("game_engines"))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100.0"},
		{0, "0.0"},
		{66.67, "66.67"},
		{33.3, "33.3"},
		{12.5, "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.in))
		})
	}
}

func TestPrinter_ScoreNotes(t *testing.T) {
	es := NewPrinter(language.Spanish)
	assert.Equal(t, "El nivel mid está un escalón por debajo de senior", es.Sprintf(ScoreLevelOneBelow, "mid", "senior"))
	assert.Equal(t, "Level senior meets the mid requirement", NewPrinter(language.English).Sprintf(ScoreLevelMeets, "senior", "mid"))
}
