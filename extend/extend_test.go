package extend

import (
	"testing"

	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/selector"
	"github.com/stretchr/testify/require"
)

func TestExtendSimpleTarget(t *testing.T) {
	store := NewStore()

	target, _ := selector.Parse(".message")
	store.AddSelector(target)

	extender, _ := selector.Parse(".error")
	store.AddSelector(extender)
	store.AddExtension(target.Complex[0].Components[0].Compound, ".message", extender.Complex[0], false, 0, sasserror.Span{})

	result, err := store.Finalize()
	require.NoError(t, err)

	extended := result[target]
	require.Len(t, extended.Complex, 2)
}

func TestExtendUnmatchedTargetErrors(t *testing.T) {
	store := NewStore()
	extender, _ := selector.Parse(".error")
	store.AddSelector(extender)
	target, _ := selector.Parse(".missing")
	store.AddExtension(target.Complex[0].Components[0].Compound, ".missing", extender.Complex[0], false, 0, sasserror.Span{})

	_, err := store.Finalize()
	require.Error(t, err)
}

func TestExtendOptionalUnmatchedIsSilent(t *testing.T) {
	store := NewStore()
	extender, _ := selector.Parse(".error")
	store.AddSelector(extender)
	target, _ := selector.Parse(".missing")
	store.AddExtension(target.Complex[0].Components[0].Compound, ".missing", extender.Complex[0], true, 0, sasserror.Span{})

	_, err := store.Finalize()
	require.NoError(t, err)
}
