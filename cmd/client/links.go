package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/auth"
	"github.com/kamikazebr/iskra-desktop/internal/client/notifier"
	"github.com/kamikazebr/iskra-desktop/internal/client/urlhandler"
)

var openURLCmd = &cobra.Command{
	Use:   "open-url <url>",
	Short: "Handle an iskra://iskra-ai/... link",
	Long: `Handle a link opened by the checkout page or the browser.

Register this command as the handler for the iskra:// scheme so that
payment and sign-in results reach the client.`,
	Args: cobra.ExactArgs(1),
	Run:  runOpenURL,
}

var deviceIDCmd = &cobra.Command{
	Use:   "device-id",
	Short: "Print the identifier sent when registering",
	Run:   runDeviceID,
}

func runOpenURL(cmd *cobra.Command, args []string) {
	links := urlhandler.New(notifier.New(app.log), app.store, app.log)
	links.Subscribe(func(ev urlhandler.Event) {
		if ev.Kind != urlhandler.PaymentSucceeded && ev.Kind != urlhandler.AuthSucceeded {
			return
		}
		ctx, cancel := requestContext()
		defer cancel()
		if _, err := app.session.RefreshProfile(ctx); err != nil {
			app.log.WithError(err).Debug("Profile refresh after link failed")
		}
	})

	handled, err := links.Handle(args[0])
	if err != nil {
		fail("Failed to handle link", err)
	}
	if !handled {
		fmt.Printf("Ignored link: %s\n", args[0])
		os.Exit(2)
	}
}

func runDeviceID(cmd *cobra.Command, args []string) {
	id, err := auth.ResolveDeviceID(app.store, app.log)
	if err != nil {
		fail("Failed to resolve device id", err)
	}
	fmt.Println(id)
}
