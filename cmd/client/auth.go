package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/api"
	"github.com/kamikazebr/iskra-desktop/internal/client/auth"
	"github.com/kamikazebr/iskra-desktop/internal/client/ui"
	"github.com/kamikazebr/iskra-desktop/internal/client/usage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
}

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in with email and password",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register [email]",
	Short: "Create an account with an emailed verification code",
	Args:  cobra.MaximumNArgs(1),
	Run:   runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run:   runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session and remaining requests",
	Run:   runStatus,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the profile and usage from the backend",
	Run:   runRefresh,
}

func init() {
	authCmd.AddCommand(loginCmd, registerCmd, logoutCmd, statusCmd, refreshCmd)
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func emailArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return prompt("Email: ")
}

// password reads ISKRA_PASSWORD when set so scripts can sign in. On a
// terminal the input is masked; piped input is read as a plain line.
func password() string {
	if pw := os.Getenv("ISKRA_PASSWORD"); pw != "" {
		return pw
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return prompt("Password: ")
	}

	pw, err := ui.ReadSecret("Password")
	if errors.Is(err, ui.ErrInputCancelled) {
		fmt.Println("Cancelled")
		os.Exit(1)
	}
	if err != nil {
		fail("Failed to read password", err)
	}
	return pw
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func runLogin(cmd *cobra.Command, args []string) {
	email := emailArg(args)
	pw := password()

	ctx, cancel := requestContext()
	defer cancel()

	spin := ui.StartSpinner(os.Stderr, "Signing in...")
	resp, err := app.session.Login(ctx, email, pw)
	spin.Stop()
	if err != nil {
		fail("Login failed", err)
	}

	fmt.Printf("✓ Signed in as %s (%s)\n", resp.User.Email, resp.User.Tier)
}

func runRegister(cmd *cobra.Command, args []string) {
	email := emailArg(args)

	// Requests are bounded by the client timeout; the wizard waits on the user.
	ctx := context.Background()

	spin := ui.StartSpinner(os.Stderr, "Sending verification code...")
	_, err := app.session.SendCode(ctx, email)
	spin.Stop()
	if err != nil {
		fail("Failed to send code", err)
	}
	fmt.Printf("✓ Verification code sent to %s\n", email)

	for {
		code := prompt("Code (or 'resend'): ")
		if code == "resend" {
			if _, err := app.session.ResendCode(ctx, email); err != nil {
				fail("Failed to resend code", err)
			}
			fmt.Println("✓ New code sent")
			continue
		}

		_, err = app.session.VerifyEmail(ctx, email, code)
		if err == nil {
			break
		}
		var backendErr *api.BackendError
		if errors.As(err, &backendErr) {
			fmt.Printf("✗ %s\n", backendErr.Message)
			continue
		}
		fail("Verification failed", err)
	}
	fmt.Println("✓ Email verified")

	pw := password()
	spin = ui.StartSpinner(os.Stderr, "Creating account...")
	resp, err := app.session.CompleteRegistration(ctx, email, pw)
	spin.Stop()
	if err != nil {
		fail("Registration failed", err)
	}

	fmt.Printf("✓ Account created for %s (%s)\n", resp.User.Email, resp.User.Tier)
}

func runLogout(cmd *cobra.Command, args []string) {
	if !app.session.IsAuthenticated() {
		fmt.Println("Not signed in")
		return
	}

	ok, err := ui.Confirm("Sign out?", ui.WithDescription("The saved token is removed from this machine."))
	if err != nil {
		fail("Logout failed", err)
	}
	if !ok {
		return
	}

	if err := app.session.Logout(); err != nil {
		fail("Logout failed", err)
	}
	fmt.Println("✓ Signed out")
}

func runStatus(cmd *cobra.Command, args []string) {
	user := app.session.CachedProfile()
	if user == nil {
		fmt.Println("Status: Not signed in")
		fmt.Println("\nRun 'iskra auth login' to authenticate")
		return
	}

	printProfile(usage.Backfill(user))
}

func runRefresh(cmd *cobra.Command, args []string) {
	ctx, cancel := requestContext()
	defer cancel()

	spin := ui.StartSpinner(os.Stderr, "Refreshing...")
	user, err := app.session.RefreshProfile(ctx)
	spin.Stop()
	if errors.Is(err, auth.ErrNotAuthenticated) {
		fmt.Println("Status: Not signed in")
		return
	}
	if err != nil {
		fail("Refresh failed", err)
	}

	printProfile(user)
}

func printProfile(user *models.User) {
	d := usage.DisplayFor(user)

	fmt.Println("Iskra - Status")
	fmt.Println("==============")
	fmt.Printf("Server:   %s\n", app.cfg.API.URL)
	fmt.Printf("Email:    %s\n", user.Email)
	fmt.Printf("Tier:     %s\n", d.Tier)
	fmt.Println(ui.RenderCredits(d))
	if d.Exhausted {
		fmt.Println("\nDaily limit reached. Run 'iskra billing upgrade' for more requests")
	}
}
