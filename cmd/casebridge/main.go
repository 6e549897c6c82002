package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hive-corporation/casebridge/internal/adapter/appliance"
	"github.com/hive-corporation/casebridge/internal/adapter/repository"
	"github.com/hive-corporation/casebridge/internal/adapter/statestore"
	"github.com/hive-corporation/casebridge/internal/config"
	"github.com/hive-corporation/casebridge/internal/core/actions"
	"github.com/hive-corporation/casebridge/internal/core/poll"
)

var configPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "casebridge",
		Short: "Bridge appliance security events into the case store",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")

	root.AddCommand(probeCmd(), actionsCmd(), actionCmd(), pollCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadClient() (*config.Config, *appliance.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	client := appliance.NewClient(
		cfg.Appliance.BaseURL,
		cfg.Appliance.PublicToken,
		cfg.Appliance.PrivateToken,
		cfg.Appliance.SkipTLSVerify,
	)
	return cfg, client, nil
}

func newRegistry(client *appliance.Client) (*actions.Registry, error) {
	devices, err := appliance.NewDeviceCache(client.DeviceSummary, 64)
	if err != nil {
		return nil, err
	}
	return actions.DefaultRegistry(client, devices), nil
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Test connectivity and credentials against the appliance",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := loadClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if _, err := client.TestConnectivity(ctx); err != nil {
				return fmt.Errorf("connectivity test failed: %w", err)
			}
			fmt.Println("Connectivity test passed")
			return nil
		},
	}
}

func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available connector actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := loadClient()
			if err != nil {
				return err
			}
			registry, err := newRegistry(client)
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func actionCmd() *cobra.Command {
	var rawParams []string

	cmd := &cobra.Command{
		Use:   "action <name>",
		Short: "Run one connector action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := loadClient()
			if err != nil {
				return err
			}
			registry, err := newRegistry(client)
			if err != nil {
				return err
			}

			params := actions.Params{}
			for _, raw := range rawParams {
				key, value, found := strings.Cut(raw, "=")
				if !found {
					return fmt.Errorf("invalid parameter %q, expected key=value", raw)
				}
				params[key] = value
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			result, err := registry.Run(ctx, args[0], params)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "action parameter as key=value (repeatable)")
	return cmd
}

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := loadClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer dbPool.Close()

			poll.InitMetrics()
			engine := poll.NewEngine(
				client,
				repository.NewPostgresCaseStore(dbPool),
				statestore.New(cfg.State.FilePath),
				client.BaseURL(),
				poll.Config{
					ModelBreaches:    cfg.Poll.ModelBreaches,
					AIAnalyst:        cfg.Poll.AIAnalyst,
					BreachLookback:   cfg.Poll.BreachLookback,
					IncidentLookback: cfg.Poll.IncidentLookback,
				},
			)

			return engine.Cycle(ctx)
		},
	}
}
