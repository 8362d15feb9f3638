package cmd

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// Version is the compiler release version.
const Version = "0.3.0"

var satisfies string

// VersionCmd prints the compiler version. With --satisfies it checks the
// version against a semver constraint, so build scripts can gate on a minimum
// toolchain without parsing output.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the compiler version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("hyperlace " + Version)
		if satisfies == "" {
			return nil
		}

		constraint, err := semver.NewConstraint(satisfies)
		if err != nil {
			return fmt.Errorf("invalid constraint %q: %w", satisfies, err)
		}
		current := semver.MustParse(Version)
		if !constraint.Check(current) {
			return fmt.Errorf("version %s does not satisfy %q", Version, satisfies)
		}
		return nil
	},
}

func init() {
	VersionCmd.Flags().StringVar(&satisfies, "satisfies", "", "fail unless the version matches this semver constraint")
}
