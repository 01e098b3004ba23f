package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

const sampleDoc = `
direction: LR
models:
  - name: User
    type: program
    props: [id, name]
    children:
      - name: Address
        props: [zipCode]
  - name: users_table
lineage:
  - from: User.id
    to: users_table.id
  - from: [User.name, User.Address.zipCode]
    to: users_table.label
    transform: concat
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "LR", doc.Direction)
	require.Len(t, doc.Models, 2)
	assert.Equal(t, "User", doc.Models[0].Name)
	assert.Equal(t, []string{"zipCode"}, doc.Models[0].Children[0].Props)

	require.Len(t, doc.Lineage, 2)
	assert.Equal(t, FlexStrings{"User.id"}, doc.Lineage[0].From)
	assert.Equal(t, FlexStrings{"User.name", "User.Address.zipCode"}, doc.Lineage[1].From)
	assert.Equal(t, "concat", doc.Lineage[1].Transform)
}

func TestParseDocument_UnknownTopLevelField(t *testing.T) {
	_, err := ParseDocument([]byte("models: []\nextra: true\n"))
	require.Error(t, err)

	var unknownErr *UnknownFieldError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "extra", unknownErr.Field)
}

func TestParseDocument_InvalidYAML(t *testing.T) {
	_, err := ParseDocument([]byte("models: [unclosed"))
	var parseErr *DocumentParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseDocument_ModelValidation(t *testing.T) {
	_, err := ParseDocument([]byte("models:\n  - type: program\n"))
	assert.ErrorContains(t, err, "missing name")

	_, err = ParseDocument([]byte("models:\n  - name: X\n    type: warehouse\n"))
	assert.ErrorContains(t, err, "unknown model type")

	_, err = ParseDocument([]byte("lineage:\n  - from: A.x\n"))
	assert.ErrorContains(t, err, "missing to")
}

func TestDocument_CatalogDefaultsKind(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	require.NoError(t, err)

	catalog := doc.Catalog()
	user, ok := catalog.FindByName("User")
	require.True(t, ok)
	assert.Equal(t, model.KindProgram, user.Kind)

	table, ok := catalog.FindByName("users_table")
	require.True(t, ok)
	assert.Equal(t, model.KindDatastore, table.Kind, "type defaults to datastore")

	assert.True(t, catalog.HasPath("User.Address"))
}

func TestDocument_Entries(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	require.NoError(t, err)

	entries := doc.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"User.name", "User.Address.zipCode"}, entries[1].From)
	assert.Equal(t, "users_table.label", entries[1].To)
}

func TestLoadDocument_AttachesFileToError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogus_field: 1\n"), 0o644))

	_, err := LoadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lineage.yaml")
}
