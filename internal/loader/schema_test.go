package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

func TestParseSchema_Inline(t *testing.T) {
	def, err := ParseSchema([]byte(`
model:
  name: User
  type: program
  props: [id, name]
  children:
    - name: Address
      props: [zipCode]
`))
	require.NoError(t, err)

	assert.Equal(t, "User", def.Name)
	assert.Equal(t, model.KindProgram, def.Kind)
	require.Len(t, def.Children, 1)
	assert.Equal(t, []string{"zipCode"}, def.Children[0].Props)
}

func TestParseSchema_SharedRef(t *testing.T) {
	def, err := ParseSchema([]byte(`
model:
  name: Order
  props: [id]
  children:
    - $ref: "#/models/Address"
models:
  Address:
    props: [zipCode, city]
`))
	require.NoError(t, err)

	require.Len(t, def.Children, 1)
	addr := def.Children[0]
	assert.Equal(t, "Address", addr.Name, "name defaults to the shared key")
	assert.Equal(t, model.KindDatastore, addr.Kind)
	assert.Equal(t, []string{"zipCode", "city"}, addr.Props)
}

func TestParseSchema_RefCycle(t *testing.T) {
	_, err := ParseSchema([]byte(`
model:
  $ref: "#/models/A"
models:
  A:
    name: A
    children:
      - $ref: "#/models/B"
  B:
    name: B
    children:
      - $ref: "#/models/A"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestParseSchema_RefReusableAcrossSiblings(t *testing.T) {
	// The same shared model on two sibling branches is reuse, not a cycle.
	def, err := ParseSchema([]byte(`
model:
  name: Root
  children:
    - name: Left
      children:
        - $ref: "#/models/Shared"
    - name: Right
      children:
        - $ref: "#/models/Shared"
models:
  Shared:
    props: [v]
`))
	require.NoError(t, err)
	assert.Equal(t, "Shared", def.Children[0].Children[0].Name)
	assert.Equal(t, "Shared", def.Children[1].Children[0].Name)
}

func TestParseSchema_Errors(t *testing.T) {
	_, err := ParseSchema([]byte("model:\n  props: [x]\n"))
	assert.ErrorContains(t, err, "missing name")

	_, err = ParseSchema([]byte("props: [x]\n"))
	assert.ErrorContains(t, err, "missing model")

	_, err = ParseSchema([]byte("model:\n  $ref: \"#/defs/X\"\n"))
	assert.ErrorContains(t, err, "unsupported $ref")

	_, err = ParseSchema([]byte("model:\n  $ref: \"#/models/Gone\"\n"))
	assert.ErrorContains(t, err, "no such shared model")
}
