package store

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPath(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "/"+id.String()+"/", JoinPath(RootPath, id))
	assert.Equal(t, "/"+id.String()+"/", JoinPath("", id))

	child := uuid.New()
	p := JoinPath(JoinPath(RootPath, id), child)
	assert.Equal(t, "/"+id.String()+"/"+child.String()+"/", p)
}

func TestNextPrefixBoundsRange(t *testing.T) {
	id := uuid.New()
	prefix := JoinPath(RootPath, id)
	next := NextPrefix(prefix)

	require.Equal(t, len(prefix), len(next))
	assert.True(t, prefix < next)

	// Everything under the prefix sorts inside [prefix, next).
	descendant := JoinPath(prefix, uuid.New())
	assert.True(t, descendant >= prefix && descendant < next)

	// A sibling path never falls into the range, even when its id shares a
	// string prefix with ours.
	sibling := "/" + id.String()[:8] + "0000-0000-0000-0000-000000000000/"
	assert.False(t, sibling >= prefix && sibling < next)
}

func TestNextPrefixIncrementsLastByte(t *testing.T) {
	assert.Equal(t, "/a0", NextPrefix("/a/"))
	assert.Equal(t, "", NextPrefix(""))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath(RootPath))

	a, b := uuid.New(), uuid.New()
	assert.NoError(t, ValidatePath(JoinPath(JoinPath(RootPath, a), b)))

	assert.Error(t, ValidatePath("no-leading-slash/"))
	assert.Error(t, ValidatePath("/missing-trailing"))
	assert.Error(t, ValidatePath("/not-a-uuid/"))
	assert.Error(t, ValidatePath(strings.ReplaceAll(JoinPath(RootPath, a), "-", "_")))
}
