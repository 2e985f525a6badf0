package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kuvia/kuvia/internal/config"
	kerrors "github.com/kuvia/kuvia/internal/errors"
	"github.com/kuvia/kuvia/internal/imagelist"
	"github.com/kuvia/kuvia/internal/logging"
	"github.com/kuvia/kuvia/internal/page"
	"github.com/kuvia/kuvia/internal/scanner"
)

// configFileEnv names a configuration file when --config is not given.
const configFileEnv = "KUVIA_CONFIG_FILE"

// app carries state shared by the commands of one invocation.
type app struct {
	cfgFile string
}

// NewRootCmd builds the kuvia command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "kuvia [flags] [FILE ...]",
		Short: "Generate a self-contained image gallery page",
		Long: `Kuvia scans for image files and writes a single HTML page with a
client-side gallery viewer. The page needs no server: images are referenced
by URL, relative to the page unless a prefix is given.

Images come from glob patterns (--pattern), directory scans (--dir), and file
arguments, in that order. With --json the page fetches its image list from a
URL when it loads instead.

Gallery keys: space toggles the list, j/k move, the arrow keys move unless
fully zoomed, z cycles the zoom.`,
		Example: strings.TrimSpace(`
  # All JPEG and PNG files in photos/ and its subdirectories
  kuvia -r -d photos -t jpg,png -o index.html

  # Images matched by a pattern, served from a CDN
  kuvia -e 'albums/**/*.jpg' -p https://cdn.example.com/ > index.html

  # A page that loads its list at runtime
  kuvia -j images.json -o index.html`),
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return bindFlags(cmd)
		},
		RunE: a.runGenerate,
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .kuvia.yml, can also use KUVIA_CONFIG_FILE env var)")
	cmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	addScanFlags(cmd.PersistentFlags())
	addPageFlags(cmd.PersistentFlags())
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newBrowseCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the command tree against the process arguments. A failure is
// reported on stderr before it is returned.
func Execute() error {
	ctx := context.Background()
	root := NewRootCmd()
	root.SilenceErrors = true
	err := root.ExecuteContext(ctx)
	if err != nil {
		reportError(ctx, root.ErrOrStderr(), err)
	}
	return err
}

// reportError logs typed errors with their code and context and prints
// anything else the way cobra would.
func reportError(ctx context.Context, w io.Writer, err error) {
	var ke *kerrors.KuviaError
	if !errors.As(err, &ke) {
		fmt.Fprintln(w, "Error:", err)
		return
	}
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelWarn, Output: w})
	kerrors.NewErrorHandler(logger).Handle(ctx, err)
}

// initConfig points viper at the configuration file and the environment.
//
// The file is, in order of precedence, the --config flag, the
// KUVIA_CONFIG_FILE environment variable, or .kuvia.yml in the working
// directory. Only an explicitly named file has to exist.
func (a *app) initConfig() error {
	config.SetDefaults()

	explicit := true
	if a.cfgFile != "" {
		viper.SetConfigFile(a.cfgFile)
	} else if envConfigFile := os.Getenv(configFileEnv); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultConfigFile, ".yml"))
	}

	// KUVIA_SERVER_PORT, KUVIA_PAGE_TITLE, ...
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// load reads and validates the configuration and creates the logger the
// command logs to. Validation warnings are logged.
func (a *app) load(cmd *cobra.Command, args []string) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg.Files = args

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
	a.reportConfig(cmd.Context(), cfg, logger)
	return cfg, logger, nil
}

func (a *app) reportConfig(ctx context.Context, cfg *config.Config, logger logging.Logger) {
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug(ctx, "Using config file", "path", used)
	}
	result := config.Validate(cfg)
	for i := range result.Warnings {
		w := &result.Warnings[i]
		logger.Warn(ctx, w, "Configuration warning", "field", w.Field)
	}
}

func newLogger(w io.Writer, lc config.LogConfig) logging.Logger {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: lc.Format,
		Output: w,
	})
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := a.load(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	src, err := listSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	renderer := page.NewRenderer(logger)
	if err := renderer.WriteTo(ctx, cfg.Output, cmd.OutOrStdout(), pageOptions(cfg, src)); err != nil {
		return fmt.Errorf("generating gallery: %w", err)
	}
	return nil
}

// listSource returns the image source of a generated page: the JSON list
// URL when one is configured, otherwise the scanned files.
func listSource(ctx context.Context, cfg *config.Config, logger logging.Logger) (imagelist.Source, error) {
	if cfg.Source.JSON != "" {
		return imagelist.Source{JSONURL: cfg.Source.JSON}, nil
	}
	urls, err := scanImages(ctx, cfg, logger)
	if err != nil {
		return imagelist.Source{}, err
	}
	return imagelist.Source{URLs: urls}, nil
}

// imageURLs resolves the image list itself, fetching a configured JSON list.
func imageURLs(ctx context.Context, cfg *config.Config, logger logging.Logger) ([]string, error) {
	if cfg.Source.JSON != "" {
		urls, err := imagelist.Fetch(ctx, nil, cfg.Source.JSON)
		if err != nil {
			return nil, err
		}
		logger.Debug(ctx, "Fetched image list", "url", cfg.Source.JSON, "images", len(urls))
		return urls, nil
	}
	return scanImages(ctx, cfg, logger)
}

func scanImages(ctx context.Context, cfg *config.Config, logger logging.Logger) ([]string, error) {
	urls, err := scanner.New(logger).Find(ctx, scanner.Options{
		Files:     cfg.Files,
		Patterns:  cfg.Scan.Patterns,
		Dirs:      cfg.Scan.Dirs,
		Types:     cfg.Scan.Types,
		Recursive: cfg.Scan.Recursive,
		Prefix:    cfg.Scan.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning for images: %w", err)
	}
	if len(urls) == 0 {
		logger.Warn(ctx, nil, "No images found", "dirs", cfg.Scan.Dirs, "patterns", cfg.Scan.Patterns)
	}
	return urls, nil
}

func pageOptions(cfg *config.Config, src imagelist.Source) page.Options {
	return page.Options{
		Title:        cfg.Page.Title,
		TemplatePath: cfg.Page.Template,
		Scripts:      cfg.Page.Scripts,
		Stylesheets:  cfg.Page.Stylesheets,
		NoMinify:     cfg.Page.NoMinify,
		List:         src,
	}
}
