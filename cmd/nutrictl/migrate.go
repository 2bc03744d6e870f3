package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
)

var migrationsDir string

// migrateCmd runs pending migrations from the db directory. The migrations
// table records applied files; each migration and its record insert share a
// transaction.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := migrationFiles(migrationsDir)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withConn(ctx, func(conn *pgx.Conn) error {
			ran, err := applyMigrations(ctx, conn, files, cmd)
			if err != nil {
				return err
			}
			if ran == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d migration(s) applied.\n", ran)
			}
			return nil
		})
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "db", "Directory holding *.sql migrations")
	rootCmd.AddCommand(migrateCmd)
}

// migrationFiles lists the *.sql files in dir in apply order.
func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil || len(files) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func applyMigrations(ctx context.Context, conn *pgx.Conn, files []string, cmd *cobra.Command) (int, error) {
	// Get already-applied migrations (table may not exist yet)
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err == nil {
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err == nil {
				applied[name] = true
			}
		}
		rows.Close()
	}

	ran := 0
	for _, f := range files {
		filename := filepath.Base(f)
		if applied[filename] {
			fmt.Fprintf(cmd.OutOrStdout(), "  skip: %s\n", filename)
			continue
		}

		content, err := os.ReadFile(f)
		if err != nil {
			return ran, fmt.Errorf("read %s: %w", filename, err)
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return ran, fmt.Errorf("start transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			tx.Rollback(ctx)
			return ran, fmt.Errorf("run %s: %w", filename, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
			filename, descriptionFromFilename(filename)); err != nil {
			tx.Rollback(ctx)
			return ran, fmt.Errorf("record %s: %w", filename, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return ran, fmt.Errorf("commit %s: %w", filename, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "  applied: %s\n", filename)
		ran++
	}
	return ran, nil
}

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
