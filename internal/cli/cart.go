package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fjod/phone_store/internal/cart"
	"github.com/fjod/phone_store/internal/catalog"
	"github.com/fjod/phone_store/internal/checkout"
	"github.com/fjod/phone_store/internal/domain"
	"github.com/spf13/cobra"
)

const defaultCLICart = "cli"

func newCartCommand(a *app) *cobra.Command {
	var cartID string

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change a cart",
	}
	cmd.PersistentFlags().StringVar(&cartID, "cart", defaultCLICart, "cart id")

	// run opens the services, applies fn and prints the resulting cart.
	run := func(cmd *cobra.Command, fn func(svc *services) ([]domain.CartLineItem, error)) error {
		svc, err := a.services(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.close()

		items, err := fn(svc)
		if err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), items)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *services) ([]domain.CartLineItem, error) {
				return svc.carts.Items(cmd.Context(), cartID), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <phone-id>",
		Short: "Add a phone from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *services) ([]domain.CartLineItem, error) {
				phone, err := svc.catalog.Phone(cmd.Context(), domain.ProductID(args[0]))
				if errors.Is(err, catalog.ErrPhoneNotFound) {
					return nil, fmt.Errorf("phone %q not found", args[0])
				}
				if err != nil {
					return nil, err
				}
				return svc.carts.AddToCart(cmd.Context(), cartID, phone), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <phone-id> <quantity>",
		Short: "Set the quantity of a line, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			return run(cmd, func(svc *services) ([]domain.CartLineItem, error) {
				return svc.carts.UpdateQuantity(cmd.Context(), cartID, domain.ProductID(args[0]), qty), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <phone-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *services) ([]domain.CartLineItem, error) {
				return svc.carts.RemoveFromCart(cmd.Context(), cartID, domain.ProductID(args[0])), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *services) ([]domain.CartLineItem, error) {
				return svc.carts.ClearCart(cmd.Context(), cartID), nil
			})
		},
	})

	return cmd
}

func printCart(w io.Writer, items []domain.CartLineItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			item.ID, item.Name, checkout.FormatPrice(item.Price), item.Quantity, checkout.FormatPrice(item.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%s\n", cart.CountOf(items), checkout.FormatPrice(cart.TotalOf(items)))
	return tw.Flush()
}
