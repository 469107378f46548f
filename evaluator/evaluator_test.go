package evaluator_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/builtin/mathfn"
	"github.com/go-sass/sass/builtin/metafn"
	"github.com/go-sass/sass/evaluator"
	"github.com/go-sass/sass/importer"
	"github.com/go-sass/sass/module"
	"github.com/go-sass/sass/parser"
	"github.com/go-sass/sass/serializer"
)

func run(t *testing.T, source string) string {
	t.Helper()
	sheet, err := parser.ParseSCSS(source, "test.scss")
	require.NoError(t, err)

	reg := builtin.NewRegistry()
	mathfn.Register(reg)
	metafn.Register(reg)

	imp := importer.New(fstest.MapFS{})
	ev := evaluator.New(imp, reg, module.NewRegistry(), nil)
	tree, err := ev.Run(sheet, "test.scss")
	require.NoError(t, err)

	return serializer.New(serializer.Options{Style: serializer.Expanded}).Serialize(tree).CSS
}

func TestVariableScopingAndDefault(t *testing.T) {
	css := run(t, `
		$x: 1;
		@if true {
			$x: 2 !default;
			$y: 3;
		}
		.a { width: $x; }
	`)
	require.Contains(t, css, "width: 1;")
}

func TestGlobalAssignmentEscapesBlock(t *testing.T) {
	css := run(t, `
		$x: 1;
		@if true {
			$x: 2;
		}
		.a { width: $x; }
	`)
	require.Contains(t, css, "width: 2;")
}

func TestExtend(t *testing.T) {
	css := run(t, `
		.message { border: 1px solid; }
		.error {
			@extend .message;
			color: red;
		}
	`)
	require.Contains(t, css, ".message, .error")
}

func TestEachAndFor(t *testing.T) {
	css := run(t, `
		@each $name, $size in (small: 1, large: 2) {
			.#{$name} { width: #{$size}px; }
		}
		@for $i from 1 through 3 {
			.col-#{$i} { order: $i; }
		}
	`)
	require.Contains(t, css, ".small")
	require.Contains(t, css, "width: 1px;")
	require.Contains(t, css, ".col-3")
	require.Contains(t, css, "order: 3;")
}

func TestMixinContentClosure(t *testing.T) {
	css := run(t, `
		$theme: dark;
		@mixin themed {
			.wrap {
				@content;
			}
		}
		@include themed {
			color: if($theme == dark, black, white);
		}
	`)
	require.Contains(t, css, ".wrap")
	require.Contains(t, css, "color: black;")
}

func TestFunctionCallAndPassthrough(t *testing.T) {
	css := run(t, `
		@function double($n) {
			@return $n * 2;
		}
		.a {
			width: double(5px);
			transform: translateX(10px);
		}
	`)
	require.Contains(t, css, "width: 10px;")
	require.Contains(t, css, "transform: translateX(10px);")
}
