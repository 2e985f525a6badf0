package cmd

import (
	"net/url"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kuvia/kuvia/internal/gallery"
	"github.com/kuvia/kuvia/internal/logging"
	"github.com/kuvia/kuvia/internal/scanner"
	"github.com/kuvia/kuvia/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	var logDir string

	cmd := &cobra.Command{
		Use:     "browse [FILE ...]",
		Aliases: []string{"b"},
		Short:   "View a gallery in the terminal",
		Long: `View a gallery in the terminal, with the same keys as the page.

Images are selected like the page's: patterns, directory scans and file
arguments, or a JSON image list fetched once at startup. Local images are
read relative to the working directory; http and https URLs are downloaded.

Keys:
  j, k           next and previous image
  right, left    next and previous image unless fully zoomed
  z, enter       cycle the zoom
  space          toggle the image list (up, down and enter pick an image)
  [, ]           go back and forward through visited images
  q              quit

Log output would corrupt the screen, so it is discarded unless --log-dir
names a directory for a log file.

Examples:
  kuvia browse -d photos
  kuvia browse -j https://example.com/images.json --start 3
  kuvia browse -d photos --select photos/cat.jpg`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBrowse(cmd, args, logDir)
		},
	}

	cmd.Flags().Int("start", 0, "Index of the first image shown")
	cmd.Flags().String("select", "", "URL or file path of the first image shown")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for the browse log file")
	cmd.MarkFlagsMutuallyExclusive("start", "select")
	return cmd
}

func (a *app) runBrowse(cmd *cobra.Command, args []string, logDir string) error {
	cfg, _, err := a.load(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	logger := logging.Logger(logging.NewNopLogger())
	if logDir != "" {
		level, _ := logging.ParseLevel(cfg.Log.Level)
		fileLogger, err := logging.NewFileLogger(&logging.LoggerConfig{
			Level:  level,
			Format: cfg.Log.Format,
		}, logDir)
		if err != nil {
			return err
		}
		defer fileLogger.Close()
		logger = fileLogger
		a.reportConfig(ctx, cfg, logger)
	}

	urls, err := imageURLs(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Source.JSON != "" {
		urls = resolveURLs(cfg.Source.JSON, urls)
	}

	return tui.Run(ctx, tui.Options{
		URLs:      urls,
		Selection: browseSelection(cmd.Flags(), urls, cfg.Scan.Prefix),
		Loader:    tui.NewSourceLoader(nil, "."),
		Logger:    logger,
	})
}

// browseSelection returns the initial selection given by --start or
// --select. Without either the gallery opens at its first image.
func browseSelection(flags *pflag.FlagSet, urls []string, prefix string) gallery.Selection {
	if flags.Changed("select") {
		key, _ := flags.GetString("select")
		return gallery.SelectKey(selectionKey(key, urls, prefix))
	}
	if flags.Changed("start") {
		index, _ := flags.GetInt("start")
		return gallery.SelectIndex(index)
	}
	return gallery.NoSelection()
}

// selectionKey maps a --select value to an image URL. The value may be the
// URL itself or a file path as typed, which is converted the way the
// scanner converts paths.
func selectionKey(value string, urls []string, prefix string) string {
	if slices.Contains(urls, value) {
		return value
	}
	if key := prefix + scanner.HTTPPath(value); slices.Contains(urls, key) {
		return key
	}
	return value
}

// resolveURLs resolves relative entries of a fetched image list against the
// list's own URL, which stands in for the page location of a browser.
// Lists that are not fetched over http keep their entries as they are.
func resolveURLs(listURL string, urls []string) []string {
	base, err := url.Parse(listURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return urls
	}

	out := make([]string, 0, len(urls))
	for _, u := range urls {
		ref, err := url.Parse(u)
		if err != nil {
			out = append(out, u)
			continue
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out
}
