package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/output"
	"github.com/mrz1836/ethtx/internal/version"
)

//nolint:gochecknoglobals // set once from main
var buildInfo version.Info

// releasesURL is the update check endpoint; tests replace it.
//
//nolint:gochecknoglobals // replaced in tests
var releasesURL = version.DefaultReleasesURL

// SetBuildInfo records the version stamped into the binary.
func SetBuildInfo(v, commit, date string) {
	buildInfo = version.Info{Version: v, Commit: commit, Date: date}
	rootCmd.Version = buildInfo.String()
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the ethtx version",
	Long: `Show the version, commit and build date of this binary.

With --check the latest GitHub release is fetched and compared.

Example:
  ethtx version
  ethtx version --check`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var versionCheck bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

type versionResult struct {
	version.Info

	Latest    string `json:"latest,omitempty"`
	UpdateURL string `json:"update_url,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	result := versionResult{Info: buildInfo}

	if versionCheck {
		ctx, cancel := contextWithTimeout(cmd)
		defer cancel()

		release, err := version.NewChecker(releasesURL, buildInfo).Latest(ctx)
		if err != nil {
			return err
		}
		result.Latest = strings.TrimPrefix(release.TagName, "v")
		if version.IsNewer(buildInfo.Version, release.TagName) {
			result.UpdateURL = release.HTMLURL
		}
	}

	return formatter.PrintResult(result, func(w io.Writer) error {
		outln(w, "ethtx "+buildInfo.String())
		if !versionCheck {
			return nil
		}
		if result.UpdateURL != "" {
			output.Info(w, "version %s is available: %s", result.Latest, result.UpdateURL)
		} else {
			output.Info(w, "up to date (latest release: %s)", result.Latest)
		}
		return nil
	})
}
