package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cgallello/remembered/internal/profile"
	"github.com/cgallello/remembered/server"
	"github.com/cgallello/remembered/store"
	"github.com/cgallello/remembered/store/db"
)

// version is set at build time.
var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "remembered",
	Short: `A reminder service that reads dates out of plain phrases like "Mom birthday Jan 3rd".`,
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile, err := loadProfile()
		if err != nil {
			slog.Error("failed to validate profile", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			cancel()
			slog.Error("failed to create db driver", "error", err)
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			cancel()
			slog.Error("failed to migrate", "error", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			cancel()
			slog.Error("failed to create server", "error", err)
			os.Exit(1)
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		if err := s.Start(ctx); err != nil {
			cancel()
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		// Wait for CTRL-C.
		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("notification-hour", 9)
	viper.SetDefault("notification-minute", 0)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone dates and alerts are computed in, local when empty")
	rootCmd.PersistentFlags().Int("notification-hour", 9, "hour of day alerts fire at until changed in settings")
	rootCmd.PersistentFlags().Int("notification-minute", 0, "minute of the hour alerts fire at until changed in settings")
	rootCmd.PersistentFlags().Bool("pro", false, "enable notifications (purchase state)")
	rootCmd.PersistentFlags().String("webhook-url", "", "URL fired alerts are posted to")
	rootCmd.PersistentFlags().String("webhook-secret", "", "secret sent with webhook deliveries")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "requests per second per client, 0 disables")
	rootCmd.PersistentFlags().String("config", "", "optional config file (json, yaml or toml)")

	for _, name := range []string{
		"mode", "addr", "port", "data", "driver", "dsn", "timezone",
		"notification-hour", "notification-minute", "pro",
		"webhook-url", "webhook-secret", "rate-limit", "config",
	} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("remembered")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	rootCmd.AddCommand(newParseCommand(), newTriggersCommand())
}

// loadProfile reads the optional config file and builds a validated profile.
func loadProfile() (*profile.Profile, error) {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	instanceProfile := &profile.Profile{
		Mode:               viper.GetString("mode"),
		Addr:               viper.GetString("addr"),
		Port:               viper.GetInt("port"),
		Data:               viper.GetString("data"),
		Driver:             viper.GetString("driver"),
		DSN:                viper.GetString("dsn"),
		Version:            version,
		Timezone:           viper.GetString("timezone"),
		NotificationHour:   viper.GetInt("notification-hour"),
		NotificationMinute: viper.GetInt("notification-minute"),
		Pro:                viper.GetBool("pro"),
		WebhookURL:         viper.GetString("webhook-url"),
		WebhookSecret:      viper.GetString("webhook-secret"),
		RateLimit:          viper.GetFloat64("rate-limit"),
	}
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("Remembered %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if p.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", p.DSN)
		}
	}
	if len(p.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", p.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", p.Addr, p.Port)
	}
	if !p.Pro {
		fmt.Println("Notifications are off (free tier); start with --pro to enable them")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
