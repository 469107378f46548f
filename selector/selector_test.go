package selector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleCompound(t *testing.T) {
	list, err := Parse("a.btn#main")
	require.NoError(t, err)
	require.Len(t, list.Complex, 1)
	require.Len(t, list.Complex[0].Components, 1)
	compound := list.Complex[0].Components[0].Compound
	require.Len(t, compound.Simple, 3)
	require.Equal(t, KindType, compound.Simple[0].Kind)
	require.Equal(t, KindClass, compound.Simple[1].Kind)
	require.Equal(t, KindID, compound.Simple[2].Kind)
}

func TestParseCombinators(t *testing.T) {
	list, err := Parse("div > .a ~ .b")
	require.NoError(t, err)
	c := list.Complex[0]
	require.Equal(t, "div > .a ~ .b", c.String())
}

func TestParseCommaList(t *testing.T) {
	list, err := Parse(".a, .b")
	require.NoError(t, err)
	require.Len(t, list.Complex, 2)
}

func TestParseNotPseudo(t *testing.T) {
	list, err := Parse(".a:not(.b, .c)")
	require.NoError(t, err)
	compound := list.Complex[0].Components[0].Compound
	pseudo := compound.Simple[1]
	require.Equal(t, "not", pseudo.Name)
	require.NotNil(t, pseudo.PseudoArgList)
	require.Len(t, pseudo.PseudoArgList.Complex, 2)
}

func TestSpecificityOrdering(t *testing.T) {
	id, _ := Parse("#a")
	class, _ := Parse(".a")
	typ, _ := Parse("a")
	require.Greater(t, id.Complex[0].Specificity(), class.Complex[0].Specificity())
	require.Greater(t, class.Complex[0].Specificity(), typ.Complex[0].Specificity())
}

func TestResolveParentImplicitNesting(t *testing.T) {
	parent, _ := Parse(".a")
	child, _ := Parse(".b")
	merged := ResolveParent(parent.Complex[0], child.Complex[0])
	require.Equal(t, ".a .b", merged.String())
}

func TestResolveParentAmpersand(t *testing.T) {
	parent, _ := Parse(".a")
	child, _ := Parse("&:hover")
	merged := ResolveParent(parent.Complex[0], child.Complex[0])
	require.Equal(t, ".a:hover", merged.String())
}
