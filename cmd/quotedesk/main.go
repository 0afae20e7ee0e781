package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/helixgrid/quotedesk/internal/config"
	"github.com/helixgrid/quotedesk/internal/logging"
	"github.com/helixgrid/quotedesk/internal/server"
	"github.com/helixgrid/quotedesk/internal/version"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var logger *logging.Logger

func initLogger(cfg *config.Config) {
	logConfig := &logging.LogConfig{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	}

	if err := logging.InitLogger(logConfig); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger = logging.GetGlobalLogger()
}

var rootCmd = &cobra.Command{
	Use:   "quotedesk",
	Short: "QuoteDesk - quote request submission API",
	Long: `QuoteDesk is the API behind the HelixGrid "Request a Quote" form.
It validates submissions, verifies the captcha challenge and dispatches the
sales notification and requester receipt emails.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		initLogger(cfg)
		defer logger.Close()

		if err := cfg.Validate(); err != nil {
			logger.Error("Invalid configuration: %v", err)
			os.Exit(1)
		}

		srv := server.NewServer(cfg)
		if err := srv.Init(); err != nil {
			logger.Error("Failed to initialize server: %v", err)
			os.Exit(1)
		}

		logger.Info("Listening on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			logger.Error("Failed to start server: %v", err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetBuildInfo().String())
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and probe downstream dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("❌ Configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Configuration complete")

		client := &http.Client{Timeout: 5 * time.Second}
		failed := false

		probes := []struct {
			name string
			url  string
		}{
			{"Captcha service", cfg.TurnstileVerifyURL},
			{"Email provider", cfg.EmailBaseURL},
		}
		if cfg.GeoGateEnabled() {
			probes = append(probes, struct {
				name string
				url  string
			}{"Geolocation service", cfg.GeoLookupURL})
		}

		for _, probe := range probes {
			s := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			s.Suffix = fmt.Sprintf(" Probing %s...", probe.name)
			s.Start()
			reachable := probeEndpoint(client, probe.url)
			s.Stop()

			if reachable {
				fmt.Printf("✅ %s reachable\n", probe.name)
			} else {
				fmt.Printf("❌ %s unreachable (%s)\n", probe.name, probe.url)
				failed = true
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}

// probeEndpoint checks basic reachability. Any HTTP response counts; the
// providers reject unauthenticated requests but that still proves the
// network path works.
func probeEndpoint(client *http.Client, url string) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
