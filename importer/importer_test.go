package importer

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoadPlainPath(t *testing.T) {
	fsys := fstest.MapFS{
		"styles.scss": &fstest.MapFile{Data: []byte(`.a { color: red; }`)},
	}
	imp := New(fsys)
	res, err := imp.Load("styles", "")
	require.NoError(t, err)
	require.Equal(t, "styles.scss", res.CanonicalURL)
	require.Equal(t, SyntaxSCSS, res.Syntax)
}

func TestLoadPrefersPartial(t *testing.T) {
	fsys := fstest.MapFS{
		"_grid.scss": &fstest.MapFile{Data: []byte(`.grid { display: grid; }`)},
		"grid.scss":  &fstest.MapFile{Data: []byte(`.grid { display: block; }`)},
	}
	imp := New(fsys)
	res, err := imp.Load("grid", "")
	require.NoError(t, err)
	require.Equal(t, "_grid.scss", res.CanonicalURL)
}

func TestLoadResolvesRelativeToImporter(t *testing.T) {
	fsys := fstest.MapFS{
		"components/_button.scss": &fstest.MapFile{Data: []byte(`.btn { border: 0; }`)},
	}
	imp := New(fsys)
	res, err := imp.Load("button", "components/index.scss")
	require.NoError(t, err)
	require.Equal(t, "components/_button.scss", res.CanonicalURL)
}

func TestLoadIndexPartial(t *testing.T) {
	fsys := fstest.MapFS{
		"components/_index.scss": &fstest.MapFile{Data: []byte(`@use "./button";`)},
	}
	imp := New(fsys)
	res, err := imp.Load("components", "")
	require.NoError(t, err)
	require.Equal(t, "components/_index.scss", res.CanonicalURL)
}

func TestLoadCSSExtensionSkipsSassSyntax(t *testing.T) {
	fsys := fstest.MapFS{
		"reset.css": &fstest.MapFile{Data: []byte(`* { margin: 0; }`)},
	}
	imp := New(fsys)
	res, err := imp.Load("reset.css", "")
	require.NoError(t, err)
	require.Equal(t, SyntaxCSS, res.Syntax)
}

func TestLoadMissingFileErrors(t *testing.T) {
	imp := New(fstest.MapFS{})
	_, err := imp.Load("missing", "")
	require.Error(t, err)
}
