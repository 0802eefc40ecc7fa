package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/taxonomy"
)

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"taxonomies", "taxonomy_entries", "analyses"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestTaxonomy_DefaultName(t *testing.T) {
	db := &DB{}
	assert.Equal(t, DefaultTaxonomyName, db.Taxonomy("").Name())
	assert.Equal(t, "es-2024", db.Taxonomy("es-2024").Name())
}

func TestEntryRows(t *testing.T) {
	entries := []taxonomy.Entry{
		{Kind: taxonomy.KindTechnicalSkill, Group: "databases", Value: "PostgreSQL", Position: 0},
		{Kind: taxonomy.KindSoftSkill, Value: "liderazgo", Position: 1},
	}

	rows := entryRows("default", entries)

	require.Len(t, rows, 2)
	assert.Equal(t, []any{"default", "technical_skill", "databases", "PostgreSQL", 0}, rows[0])
	assert.Equal(t, []any{"default", "soft_skill", "", "liderazgo", 1}, rows[1])
	assert.Len(t, rows[0], len(entryColumns))
}

func TestEntryRows_DefaultTaxonomyRoundTrip(t *testing.T) {
	tax, err := taxonomy.Default()
	require.NoError(t, err)

	rows := entryRows("default", tax.Entries())

	entries := make([]taxonomy.Entry, len(rows))
	for i, r := range rows {
		entries[i] = taxonomy.Entry{
			Kind:     taxonomy.EntryKind(r[1].(string)),
			Group:    r[2].(string),
			Value:    r[3].(string),
			Position: r[4].(int),
		}
	}
	rebuilt, err := taxonomy.FromEntries(entries)
	require.NoError(t, err)
	assert.Equal(t, tax.Spec(), rebuilt.Spec())
}

func TestHashText(t *testing.T) {
	assert.Len(t, hashText("cv"), 64)
	assert.Equal(t, hashText("cv"), hashText("cv"))
	assert.NotEqual(t, hashText("cv"), hashText("job"))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("Ana"))
	assert.Equal(t, "Ana", *nullIfEmpty("Ana"))
}
