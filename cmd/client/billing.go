package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/billing"
	"github.com/kamikazebr/iskra-desktop/internal/client/notifier"
	"github.com/kamikazebr/iskra-desktop/internal/client/ui"
	"github.com/kamikazebr/iskra-desktop/internal/client/urlhandler"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Subscription commands",
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [pro|pro_plus]",
	Short: "Buy a paid tier and wait for the payment to be confirmed",
	Long: `Buy a paid tier.

The checkout page is opened in the browser and shown as a QR code. The
command then checks the payment every few seconds until it is confirmed,
canceled, or the attempts run out.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runUpgrade,
}

var paymentStatusCmd = &cobra.Command{
	Use:   "status <payment-id>",
	Short: "Show the state of a payment",
	Args:  cobra.ExactArgs(1),
	Run:   runPaymentStatus,
}

var upgradeNoBrowser bool

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeNoBrowser, "no-browser", false, "Do not open the checkout page")
	billingCmd.AddCommand(upgradeCmd, paymentStatusCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) {
	current := app.session.CachedProfile()
	if current == nil {
		fmt.Println("Not signed in. Run 'iskra auth login' first")
		os.Exit(1)
	}

	var tier models.Tier
	if len(args) > 0 {
		tier = models.Tier(args[0])
	} else {
		picked, ok, err := ui.PickTier(current.Tier)
		if err != nil {
			fail("Upgrade failed", err)
		}
		if !ok {
			return
		}
		tier = picked
	}

	ctx, cancel := requestContext()
	spin := ui.StartSpinner(os.Stderr, "Creating payment...")
	payment, err := app.session.CreatePayment(ctx, tier, app.cfg.Billing.ReturnURL)
	spin.Stop()
	cancel()
	if err != nil {
		fail("Failed to create payment", err)
	}

	fmt.Printf("\nPayment %s: %.2f RUB\n", payment.PaymentID, payment.Amount)
	fmt.Printf("Open to pay: %s\n\n", payment.ConfirmationURL)
	if qr, err := ui.QRCode(payment.ConfirmationURL); err == nil {
		fmt.Println(qr)
	}
	if !upgradeNoBrowser {
		if err := openBrowser(payment.ConfirmationURL); err != nil {
			app.log.WithError(err).Debug("Failed to open browser")
		}
	}

	links := urlhandler.New(notifier.New(app.log), app.store, app.log)
	poller := &billing.Poller{
		Checker:     app.session,
		Interval:    app.cfg.Billing.PollInterval,
		MaxAttempts: app.cfg.Billing.MaxAttempts,
		Log:         app.log,
		OnSucceeded: func(string) {
			links.Handle(urlhandler.Link(urlhandler.PaymentSucceeded))
		},
		OnCanceled: func(string) {
			links.Handle(urlhandler.Link(urlhandler.PaymentCanceled))
		},
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Waiting for payment confirmation... (Ctrl+C to stop)")
	handle := poller.Start(sigCtx, payment.PaymentID)
	defer handle.Stop()

	var result billing.Result
	select {
	case result = <-handle.Done():
	case <-sigCtx.Done():
		fmt.Printf("\nStopped. Check later with 'iskra billing status %s'\n", payment.PaymentID)
		return
	}

	switch result.State {
	case billing.StateSucceeded:
		refreshCtx, cancel := requestContext()
		user, err := app.session.RefreshProfile(refreshCtx)
		cancel()
		if err != nil {
			app.log.WithError(err).Warn("Failed to refresh profile after payment")
			fmt.Println("✓ Payment confirmed")
			return
		}
		fmt.Printf("✓ Payment confirmed, you are now on %s\n", user.Tier)
	case billing.StateCanceled:
		fmt.Println("✗ Payment canceled")
	default:
		fmt.Printf("Could not confirm payment, check status later with `iskra billing status %s`\n", payment.PaymentID)
	}
}

func runPaymentStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := requestContext()
	defer cancel()

	status, _, err := app.session.CheckPaymentStatus(ctx, args[0])
	if err != nil {
		fail("Failed to get payment status", err)
	}

	fmt.Printf("Payment: %s\n", args[0])
	fmt.Printf("Status:  %s\n", status.Status)
	fmt.Printf("Paid:    %t\n", status.Paid)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
