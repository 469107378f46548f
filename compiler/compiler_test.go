package compiler_test

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-sass/sass/compiler"
	"github.com/go-sass/sass/serializer"
)

func TestCompileFS_EndToEnd(t *testing.T) {
	fsys := fstest.MapFS{
		"_colors.scss": &fstest.MapFile{Data: []byte(`
			$brand: #336699;
			@mixin rounded($radius: 4px) {
				border-radius: $radius;
			}
		`)},
		"main.scss": &fstest.MapFile{Data: []byte(`
			@use "colors";

			.card {
				color: colors.$brand;
				@include colors.rounded(8px);

				.title {
					font-weight: bold;
				}
			}

			.card, .panel {
				border: 1px solid colors.$brand;
			}
		`)},
	}

	result, err := compiler.CompileFS(mustRead(t, fsys, "main.scss"), "main.scss", fsys, compiler.Options{
		Style: serializer.Expanded,
	})
	require.NoError(t, err)

	require.Contains(t, result.CSS, "color: #336699;")
	require.Contains(t, result.CSS, "border-radius: 8px;")
	require.Contains(t, result.CSS, ".card .title")
	require.Contains(t, result.CSS, ".card, .panel")
	require.Equal(t, []string{"_colors.scss"}, result.LoadedURLs)
}

func TestCompileFS_Compressed(t *testing.T) {
	fsys := fstest.MapFS{
		"main.scss": &fstest.MapFile{Data: []byte(`
			.a { color: red; }
			.b { color: red; }
		`)},
	}

	result, err := compiler.CompileFS(mustRead(t, fsys, "main.scss"), "main.scss", fsys, compiler.Options{
		Style: serializer.Compressed,
	})
	require.NoError(t, err)
	require.NotContains(t, result.CSS, "\n  ")
	if diff := cmp.Diff(".a{color:red;}.b{color:red;}", result.CSS); diff != "" {
		t.Fatalf("compressed output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileFS_Error(t *testing.T) {
	fsys := fstest.MapFS{
		"main.scss": &fstest.MapFile{Data: []byte(`.a { color: $missing; }`)},
	}
	_, err := compiler.CompileFS(mustRead(t, fsys, "main.scss"), "main.scss", fsys, compiler.Options{})
	require.Error(t, err)
}

func mustRead(t *testing.T, fsys fstest.MapFS, name string) string {
	t.Helper()
	return string(fsys[name].Data)
}
