package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fjod/phone_store/internal/catalog"
	"github.com/fjod/phone_store/internal/checkout"
	"github.com/spf13/cobra"
)

func newCatalogCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the phone catalog",
	}
	cmd.AddCommand(newCatalogImportCommand(a))
	cmd.AddCommand(newCatalogListCommand(a))
	return cmd
}

func newCatalogImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Insert or update phones from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			phones, err := catalog.LoadSeed(f)
			if err != nil {
				return err
			}

			repo, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := catalog.NewService(repo, a.log).Import(cmd.Context(), phones)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d phones\n", n)
			return nil
		},
	}
}

func newCatalogListCommand(a *app) *cobra.Command {
	var (
		filter catalog.Filter
		all    bool
		sort   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List phones in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := catalog.ParseSortOrder(sort)
			if err != nil {
				return err
			}
			filter.Sort = order
			filter.AvailableOnly = !all

			repo, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer repo.Close()

			phones, err := repo.ListPhones(cmd.Context(), filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE\tCONDITION\tAVAILABLE")
			for _, p := range phones {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
					p.ID, p.Name, p.Brand, checkout.FormatPrice(p.Price), p.Condition, p.Available)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include sold phones")
	cmd.Flags().BoolVar(&filter.DealsOnly, "deals", false, "only phones marked as deals")
	cmd.Flags().StringVar(&filter.Brand, "brand", "", "filter by brand")
	cmd.Flags().Int64Var(&filter.MinPrice, "min-price", 0, "minimum price in rupees")
	cmd.Flags().Int64Var(&filter.MaxPrice, "max-price", 0, "maximum price in rupees")
	cmd.Flags().StringVar(&sort, "sort", string(catalog.SortNewest), "newest, price_asc or price_desc")

	return cmd
}
