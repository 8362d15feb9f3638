package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperlace-lang/hyperlace/internal/compiler"
)

var debugLog bool

// BuildCmd compiles each source file through its own independent pipeline.
// Files are compiled in parallel; the pipeline itself holds no shared state.
var BuildCmd = &cobra.Command{
	Use:   "build <file.hl> [more files...]",
	Short: "Compile Hyperlace source files into NASM assembly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var g errgroup.Group
		for _, srcPath := range args {
			srcPath := srcPath
			g.Go(func() error {
				return buildOne(srcPath)
			})
		}
		return g.Wait()
	},
}

func init() {
	BuildCmd.Flags().BoolVar(&debugLog, "debug", false, "write a .log debug dump next to the build artifacts")
}

func buildOne(srcPath string) error {
	start := time.Now()

	asmPath, err := compiler.CompileAndWrite(srcPath, outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", srcPath, err)
		return err
	}
	fmt.Printf("%s -> %s\n", srcPath, asmPath)

	if debugLog {
		if err := writeDebugLog(srcPath, time.Since(start)); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", srcPath, err)
			return err
		}
	}
	return nil
}

// writeDebugLog re-runs the in-memory pipeline and dumps its intermediate
// artifacts: raw source, expanded source, token table, and statistics.
func writeDebugLog(srcPath string, elapsed time.Duration) error {
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	res, err := compiler.Compile(string(content))
	if err != nil {
		return err
	}

	var log strings.Builder
	log.WriteString("Hyperlace Compiler Debug Log\n")
	log.WriteString("Timestamp: " + time.Now().Format(time.RFC1123) + "\n")
	log.WriteString("----------------------------------------\n\n")

	log.WriteString("[Source Code]\n" + string(content) + "\n\n")
	log.WriteString("[Expanded Code]\n" + res.Expanded.Text + "\n\n")

	log.WriteString("[Tokens]\n")
	for _, tok := range res.Tokens {
		fmt.Fprintf(&log, "%4d:%2d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Literal)
	}

	log.WriteString("\n[Statistics]\n")
	fmt.Fprintf(&log, "Total Statements: %d\n", len(res.Program.Statements))
	fmt.Fprintf(&log, "Compile Time: %dms\n", elapsed.Milliseconds())
	log.WriteString("\n[Status] Compilation Completed.\n")

	base := strings.TrimSuffix(filepath.Base(srcPath), compiler.SourceExt)
	return os.WriteFile(filepath.Join(outDir, base+".log"), []byte(log.String()), 0o644)
}
