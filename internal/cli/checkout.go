package cli

import (
	"fmt"

	"github.com/fjod/phone_store/internal/checkout"
	"github.com/spf13/cobra"
)

func newCheckoutCommand(a *app) *cobra.Command {
	var cartID, name, phone string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Hand a cart off to WhatsApp and print the link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.close()

			res, err := svc.checkout.Checkout(cmd.Context(), cartID, name, phone)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checkout %s, total %s\n", res.CheckoutID, checkout.FormatPrice(res.Total))
			fmt.Fprintln(out, res.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&cartID, "cart", defaultCLICart, "cart id")
	cmd.Flags().StringVar(&name, "name", "", "customer name")
	cmd.Flags().StringVar(&phone, "phone", "", "customer mobile number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}
