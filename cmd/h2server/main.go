package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/h2server/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "h2server [port|url]",
	Short:   "Development HTTP server with overlays, templates and proxying",
	Long: `h2server serves a directory over HTTP. Requests are walked through an
ordered route table that can fall back to an overlay directory, render
templates, run CGI scripts, redirect, or proxy unresolved paths upstream.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := cmd.Flags().Set("host", args[0]); err != nil {
				return err
			}
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
	RunE: runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringSlice("config", nil, "config file paths, merged left to right (default: ./h2server.yaml)")

	flags.String("host", "", "port, host:port or URL to listen on (env: H2SERVER_SERVER_URL)")
	flags.IntP("port", "p", 0, "port to listen on, 0 picks a free port")
	flags.StringP("address", "a", "", "address to listen on (default: 0.0.0.0)")
	flags.String("root-path", "", "URL prefix the site is mounted at (default: /)")
	flags.Bool("ssl", false, "serve HTTPS")
	flags.String("cert", "", "TLS certificate file (default: cert.pem)")
	flags.String("key", "", "TLS key file (default: key.pem)")
	flags.Bool("http2", false, "enable HTTP/2, cleartext when --ssl is not set")
	flags.Int64("max-length", 0, "maximum request body length in bytes (default: 20 MiB)")

	flags.String("cwd", "", "directory to serve (default: .)")
	flags.String("static", "", "overlay directory below the root used for missing files")
	flags.StringArrayP("index", "I", nil, "default page names, repeatable (default: index.html, index.htm)")
	flags.Bool("no-dir", false, "disable directory listings")

	flags.StringP("proxy", "P", "", "upstream URL for paths the root cannot resolve")
	flags.String("redirect", "", "redirect every request to this location")

	flags.BoolP("open", "o", false, "open a browser once the server is running")
	flags.String("open-url", "", "path to open in the browser")
	flags.String("open-client", "", "browser command to use")

	flags.BoolP("log", "s", false, "print one line per request")
	flags.BoolP("utc", "U", false, "use UTC HTTP dates in the request log")
	flags.Bool("log-ip", false, "include the client address in the request log")
	flags.String("log-level", "", "log level: debug, info, warn, error (default: info)")
	flags.String("log-format", "", "log format: pretty, json (default: pretty)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
