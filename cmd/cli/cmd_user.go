package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"meteoapi/internal/auth"
	"meteoapi/internal/entity/db"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long:  `Create a user account. Username and password are read interactively.`,
	RunE:  runCreateUser,
}

var (
	createUserAdmin bool
	createUserEmail string
)

func init() {
	createUserCmd.Flags().BoolVar(&createUserAdmin, "admin", false, "grant the admin role")
	createUserCmd.Flags().StringVar(&createUserEmail, "email", "", "email address (defaults to <username>@localhost)")
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(createUserCmd)
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	application := appFrom(cmd)
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if err := auth.ValidateUsername(username); err != nil {
		return err
	}

	fmt.Print("Enter password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	password := string(passwordBytes)
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	fmt.Println()
	if password != string(confirmBytes) {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(createUserEmail))
	if email == "" {
		email = strings.ToLower(username) + "@localhost"
	}
	role := db.UserRoleUser
	if createUserAdmin {
		role = db.UserRoleAdmin
	}

	user := &db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := application.Repo.CreateUser(cmd.Context(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully!\n")
	fmt.Printf("ID: %d\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Role: %s\n", user.Role)
	return nil
}
