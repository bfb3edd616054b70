package output

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// BannerOptions configures the startup banner display.
type BannerOptions struct {
	ShowBanner  bool
	ShowVersion bool
	ShowLicense bool
}

// DefaultBannerOptions returns the default banner configuration.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{ShowBanner: true, ShowVersion: true, ShowLicense: true}
}

// PrintBanner writes the startup banner to w, falling back to plain text
// (the version and license lines, without the ASCII logo) when
// opts.ShowBanner is false.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}

	if !opts.ShowBanner {
		if opts.ShowVersion {
			fmt.Fprintf(w, "prreview v%s\n", version)
		}
		if opts.ShowLicense {
			fmt.Fprintln(w, "Apache-2.0 License | https://github.com/codepathfinder/prreview")
		}
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, ASCIILogo())
	if opts.ShowVersion {
		fmt.Fprintf(w, "prreview v%s\n", version)
	}
	if opts.ShowLicense {
		fmt.Fprintln(w, "Apache-2.0 License | https://github.com/codepathfinder/prreview")
	}
	fmt.Fprintln(w)
}

// ASCIILogo renders the startup ASCII art.
func ASCIILogo() string {
	return figure.NewFigure("PR Review", "standard", true).String()
}

// CompactBanner returns a single-line banner for non-TTY output.
func CompactBanner(version string) string {
	return fmt.Sprintf("prreview v%s | Apache-2.0 | https://github.com/codepathfinder/prreview", version)
}

// ShouldShowBanner reports whether the full banner should render: never
// when --no-banner is set, otherwise only when connected to a TTY.
func ShouldShowBanner(isTTY, noBannerFlag bool) bool {
	if noBannerFlag {
		return false
	}
	return isTTY
}
