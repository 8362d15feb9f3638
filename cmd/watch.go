package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hyperlace-lang/hyperlace/internal/compiler"
)

// WatchCmd rebuilds source files whenever the filesystem reports a write.
// Each rebuild runs a fresh, independent pipeline.
var WatchCmd = &cobra.Command{
	Use:   "watch <file.hl> [more files...]",
	Short: "Recompile Hyperlace source files on change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		watched := make(map[string]bool, len(args))
		for _, srcPath := range args {
			abs, err := filepath.Abs(srcPath)
			if err != nil {
				return err
			}
			watched[abs] = true
			// Watch the directory: editors often replace the file on save,
			// which drops a watch registered on the file itself.
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				return err
			}
			buildQuietly(abs)
		}

		fmt.Printf("watching %d file(s), ctrl-c to stop\n", len(args))
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				abs, err := filepath.Abs(ev.Name)
				if err != nil || !watched[abs] {
					continue
				}
				buildQuietly(abs)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintln(os.Stderr, "watch error:", err)
			}
		}
	},
}

// buildQuietly compiles one file and reports the outcome without stopping the
// watch loop.
func buildQuietly(srcPath string) {
	asmPath, err := compiler.CompileAndWrite(srcPath, outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", srcPath, err)
		return
	}
	fmt.Printf("%s -> %s\n", srcPath, asmPath)
}
