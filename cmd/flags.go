package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kuvia/kuvia/internal/config"
)

// flagKeys maps flag names to the configuration keys they override.
var flagKeys = map[string]string{
	"output":     config.KeyOutput,
	"dir":        config.KeyScanDirs,
	"recursive":  config.KeyScanRecursive,
	"types":      config.KeyScanTypes,
	"pattern":    config.KeyScanPatterns,
	"prefix":     config.KeyScanPrefix,
	"json":       config.KeySourceJSON,
	"title":      config.KeyPageTitle,
	"template":   config.KeyPageTemplate,
	"js":         config.KeyPageScripts,
	"css":        config.KeyPageStylesheets,
	"no-min":     config.KeyPageNoMinify,
	"host":       config.KeyServerHost,
	"port":       config.KeyServerPort,
	"root":       config.KeyServerRoot,
	"watch":      config.KeyServerWatch,
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
}

// addScanFlags adds the flags selecting the images of a gallery.
func addScanFlags(flags *pflag.FlagSet) {
	flags.StringSliceP("dir", "d", nil, "Directory to scan for images (repeatable)")
	flags.BoolP("recursive", "r", false, "Scan directories recursively")
	flags.StringSliceP("types", "t", nil, "File types to scan for, comma separated (default jpg,jpeg,png,gif,webp)")
	flags.StringArrayP("pattern", "e", nil, "Glob pattern selecting images, ** matches any depth (repeatable)")
	flags.StringP("prefix", "p", "", "Prefix prepended to every image URL")
	flags.StringP("json", "j", "", "URL of a JSON image list; replaces scanning")
}

// addPageFlags adds the flags customizing the generated page.
func addPageFlags(flags *pflag.FlagSet) {
	flags.String("title", "", "Page title (default Kuvia)")
	flags.String("template", "", "Page template replacing the built-in one")
	flags.StringArrayP("js", "J", nil, "Extra script URL included in the page (repeatable)")
	flags.StringArrayP("css", "C", nil, "Extra stylesheet URL included in the page (repeatable)")
	flags.Bool("no-min", false, "Do not minify the gallery script and stylesheet")
}

func addServerFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "Host to bind to (default localhost)")
	flags.Int("port", 0, "Port to serve on (default 8080)")
	flags.String("root", "", "Directory served as the gallery (default .)")
	flags.BoolP("watch", "w", false, "Reload connected pages when images change")
}

// bindFlags binds every known flag of cmd, inherited ones included, to its
// configuration key.
func bindFlags(cmd *cobra.Command) error {
	var err error
	bind := func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = viper.BindPFlag(key, f)
	}
	cmd.InheritedFlags().VisitAll(bind)
	cmd.LocalFlags().VisitAll(bind)
	return err
}
