package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "nutrictl",
	Short: "nutrictl manages the nutri API database and users",
	Long:  "nutrictl runs schema migrations, creates users and computes daily targets without the server.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; the environment or flags may carry DB_URL.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	viper.AutomaticEnv()
	rootCmd.PersistentFlags().String("db-url", "", "Postgres connection URL (default $DB_URL)")
	_ = viper.BindPFlag("db_url", rootCmd.PersistentFlags().Lookup("db-url"))
}

// withConn opens a single connection for the duration of fn.
func withConn(ctx context.Context, fn func(conn *pgx.Conn) error) error {
	dbURL := viper.GetString("db_url")
	if dbURL == "" {
		return fmt.Errorf("db_url is not set: pass --db-url or set DB_URL")
	}
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer conn.Close(ctx)
	return fn(conn)
}
