package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// createUserCmd prompts for credentials and creates a user with a
// bcrypt-hashed password, a fresh auth token and an empty profile.
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readNewUser(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withConn(ctx, func(conn *pgx.Conn) error {
			userID, token, err := insertUser(ctx, conn, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nUser created successfully!\n")
			fmt.Fprintf(out, "  ID:         %d\n", userID)
			fmt.Fprintf(out, "  Username:   %s\n", in.Username)
			fmt.Fprintf(out, "  Auth Token: %s\n", token)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)
}

type newUser struct {
	Username string
	Email    string
	Password string
}

// readNewUser prompts for username, email and password on in.
func readNewUser(in io.Reader, out io.Writer) (newUser, error) {
	reader := bufio.NewReader(in)
	ask := func(label string) string {
		fmt.Fprintf(out, "%s: ", label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	u := newUser{
		Username: ask("Username"),
		Email:    ask("Email"),
		Password: ask("Password"),
	}
	if u.Username == "" || u.Password == "" {
		return newUser{}, fmt.Errorf("username and password are required")
	}
	return u, nil
}

func insertUser(ctx context.Context, conn *pgx.Conn, in newUser) (int, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", fmt.Errorf("hash password: %w", err)
	}
	authToken := uuid.New().String()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		in.Username, in.Email, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		return 0, "", fmt.Errorf("create user: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id, name) VALUES ($1, $2)`, userID, in.Username); err != nil {
		return 0, "", fmt.Errorf("create profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, "", fmt.Errorf("commit: %w", err)
	}
	return userID, authToken, nil
}
