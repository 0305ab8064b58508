package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicat/internal/catalog/models"
	dErrors "civicat/pkg/domain-errors"
)

func group(id, name string, parent string) models.Group {
	g := models.Group{ID: id, Name: name, Category: "committee", OfficialURL: "https://example.org/" + id}
	if parent != "" {
		g.Parent = &parent
	}
	return g
}

func TestBuildChain(t *testing.T) {
	groups := []models.Group{
		group("a", "Assembly", ""),
		group("b", "Budget Committee", "a"),
		group("c", "Budget Subcommittee", "b"),
	}

	tree, err := Build(groups, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, tree.MaxDepth)
	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].Children, 1)
	require.Len(t, tree.Roots[0].Children[0].Children, 1)
	assert.Equal(t, "c", tree.Roots[0].Children[0].Children[0].Group.ID)
}

func TestBuildLevelLimit(t *testing.T) {
	groups := []models.Group{
		group("a", "Assembly", ""),
		group("b", "Budget Committee", "a"),
		group("c", "Budget Subcommittee", "b"),
	}

	tree, err := Build(groups, 2)
	require.NoError(t, err)

	// The limited node itself stays present; only its expansion stops.
	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].Children, 1)
	b := tree.Roots[0].Children[0]
	assert.Equal(t, "b", b.Group.ID)
	assert.Empty(t, b.Children)

	assert.Equal(t, 3, tree.MaxDepth, "max depth reflects the unlimited tree")
}

func TestBuildUnknownParentBecomesRoot(t *testing.T) {
	groups := []models.Group{
		group("a", "Assembly", ""),
		group("x", "Detached Committee", "gone"),
	}

	tree, err := Build(groups, 0)
	require.NoError(t, err)

	require.Len(t, tree.Roots, 2)
	assert.Equal(t, 1, tree.MaxDepth)
}

func TestBuildMultipleChildrenKeepOrder(t *testing.T) {
	groups := []models.Group{
		group("a", "Assembly", ""),
		group("b", "First Committee", "a"),
		group("c", "Second Committee", "a"),
	}

	tree, err := Build(groups, 0)
	require.NoError(t, err)

	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].Children, 2)
	assert.Equal(t, "b", tree.Roots[0].Children[0].Group.ID)
	assert.Equal(t, "c", tree.Roots[0].Children[1].Group.ID)
}

func TestBuildRejectsCycles(t *testing.T) {
	groups := []models.Group{
		group("a", "A", "b"),
		group("b", "B", "a"),
	}

	_, err := Build(groups, 0)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeCyclicHierarchy, dErrors.CodeOf(err))
}

func TestBuildSelfParentRejected(t *testing.T) {
	groups := []models.Group{group("a", "A", "a")}

	_, err := Build(groups, 0)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeCyclicHierarchy, dErrors.CodeOf(err))
}

func TestBuildEmpty(t *testing.T) {
	tree, err := Build(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, tree.Roots)
	assert.Equal(t, 0, tree.MaxDepth)
}
