package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/go-sass/sass/compiler"
	"github.com/go-sass/sass/serializer"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	style       string
	outPath     string
	loadPaths   []string
	emitSrcMap  bool
	watchOutDir string

	rootCmd = &cobra.Command{
		Use:   "sass",
		Short: "Compile Sass (SCSS and indented) to CSS",
	}

	compileCmd = &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a single Sass entrypoint to CSS",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	watchCmd = &cobra.Command{
		Use:   "watch <file>",
		Short: "Recompile <file> whenever it or its load paths change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{compileCmd, watchCmd} {
		cmd.Flags().StringVar(&style, "style", "expanded", `output style, "expanded" or "compressed"`)
		cmd.Flags().StringVarP(&outPath, "out", "o", "", "write CSS to this path instead of stdout")
		cmd.Flags().StringArrayVar(&loadPaths, "load-path", nil, "additional directory to search for @use/@forward/@import (repeatable)")
		cmd.Flags().BoolVar(&emitSrcMap, "source-map", false, "emit a .css.map alongside the output file")
	}
	watchCmd.Flags().StringVar(&watchOutDir, "watch-dir", "", "directory to watch for changes beyond the entry file's own directory")

	rootCmd.AddCommand(compileCmd, watchCmd)
}

func compileOptions() (compiler.Options, error) {
	var s serializer.Style
	switch style {
	case "expanded", "":
		s = serializer.Expanded
	case "compressed":
		s = serializer.Compressed
	default:
		return compiler.Options{}, fmt.Errorf("unknown --style %q, want \"expanded\" or \"compressed\"", style)
	}
	return compiler.Options{
		Style:     s,
		SourceMap: emitSrcMap,
		LoadPaths: loadPaths,
	}, nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	opts, err := compileOptions()
	if err != nil {
		return err
	}
	return compileOnce(args[0], opts)
}

func compileOnce(path string, opts compiler.Options) error {
	result, err := compiler.Compile(path, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		return err
	}

	if outPath == "" {
		fmt.Println(result.CSS)
		return nil
	}

	if err := os.WriteFile(outPath, []byte(result.CSS), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	if result.SourceMap != nil {
		mapPath := outPath + ".map"
		data, err := marshalSourceMap(result.SourceMap)
		if err != nil {
			return fmt.Errorf("encoding source map: %w", err)
		}
		if err := os.WriteFile(mapPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", mapPath, err)
		}
	}
	fmt.Println(okStyle.Render("compiled " + path + " -> " + outPath))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	entry := args[0]
	opts, err := compileOptions()
	if err != nil {
		return err
	}

	if err := compileOnce(entry, opts); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("initial compile failed, watching anyway"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{filepath.Dir(entry): true}
	if watchOutDir != "" {
		dirs[watchOutDir] = true
	}
	for _, p := range loadPaths {
		dirs[p] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	fmt.Println(okStyle.Render("watching for changes, ctrl-c to stop"))
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSassFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := compileOnce(entry, opts); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		}
	}
}

func isSassFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".scss" || ext == ".sass" || ext == ".css"
}
