package cmd

import (
	"github.com/spf13/cobra"
)

var outDir string

var rootCmd = &cobra.Command{
	Use:   "hyperlace",
	Short: "Compiler for the Hyperlace language",
	Long: `Hyperlace is an ahead-of-time compiler translating Hyperlace source
into NASM x86-64 assembly through a linear intermediate representation.

Commands:
  build    Compile one or more (.hl) source files
  watch    Recompile source files whenever they change
  version  Print the compiler version
`,
	SilenceUsage: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "output directory for build artifacts")

	rootCmd.AddCommand(BuildCmd, WatchCmd, VersionCmd)
}
