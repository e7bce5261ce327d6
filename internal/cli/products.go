package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"product-catalog/internal/client"
	"product-catalog/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// productFlags backs the form flags shared by create and update
type productFlags struct {
	name        string
	price       float64
	category    string
	stock       int
	description string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().Float64Var(&f.price, "price", 0, "unit price, greater than 0")
	cmd.Flags().StringVar(&f.category, "category", "", "product category")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&f.description, "description", "", "free text description")

	_ = cmd.RegisterFlagCompletionFunc("category", completeCategory)
}

// input returns only the fields whose flags were set on the command line
func (f *productFlags) input(cmd *cobra.Command) domain.ProductInput {
	var in domain.ProductInput
	flags := cmd.Flags()

	if flags.Changed("name") {
		in.Name = &f.name
	}
	if flags.Changed("price") {
		in.Price = &f.price
	}
	if flags.Changed("category") {
		in.Category = &f.category
	}
	if flags.Changed("stock") {
		in.Stock = &f.stock
	}
	if flags.Changed("description") {
		in.Description = &f.description
	}
	return in.Normalize()
}

func completeCategory(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, category := range domain.SuggestedCategories {
		if strings.HasPrefix(strings.ToLower(category), strings.ToLower(toComplete)) {
			matches = append(matches, category)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all products, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := client.Open(cmd.Context(), a.api)
			if err != nil {
				a.logger.Debug("Fetch failed", zap.Error(err))
				return err
			}

			products := store.Products()
			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, "No products found. Add your first product with 'catalogctl create'.")
				return nil
			}

			fmt.Fprintf(out, "Products (%d)\n", len(products))
			return writeTable(out, products)
		},
	}
}

func (a *app) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			resp, err := a.api.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}

			writeDetails(cmd.OutOrStdout(), resp.Data)
			return nil
		},
	}
}

func (a *app) newCreateCommand() *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "create --name <name> --price <price> --category <category>",
		Short: "Add a product to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := flags.input(cmd)
			if err := input.ValidateCreate(); err != nil {
				return reportValidation(cmd.ErrOrStderr(), err)
			}

			resp, err := client.NewStore(a.api).Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", resp.Message, resp.Data.ID)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *app) newUpdateCommand() *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "update <id> [--name ...] [--price ...] [--category ...] [--stock ...] [--description ...]",
		Short: "Change selected fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			input := flags.input(cmd)
			if input == (domain.ProductInput{}) {
				return errors.New("nothing to update, pass at least one field flag")
			}
			if err := input.ValidateUpdate(); err != nil {
				return reportValidation(cmd.ErrOrStderr(), err)
			}

			resp, err := client.NewStore(a.api).Update(cmd.Context(), id, input)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			writeDetails(cmd.OutOrStdout(), resp.Data)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *app) newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this product?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			resp, err := client.NewStore(a.api).Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// reportValidation prints one line per rejected field and returns the summary
func reportValidation(w io.Writer, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		for _, f := range ve.Fields {
			fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
		}
	}
	return err
}

func writeTable(w io.Writer, products []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tADDED")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Category, formatPrice(p.Price), formatStock(p.Stock), p.CreatedAt.Format("2 Jan 2006"))
	}
	return tw.Flush()
}

func writeDetails(w io.Writer, p *domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(p.Price))
	fmt.Fprintf(tw, "Stock:\t%s\n", formatStock(p.Stock))
	if p.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	}
	fmt.Fprintf(tw, "Added:\t%s\n", p.CreatedAt.Format("2 Jan 2006 15:04"))
	tw.Flush()
}

// formatPrice renders a rupiah amount with dot thousands separators, e.g. "Rp 15.000.000"
func formatPrice(price float64) string {
	whole := strconv.FormatFloat(price, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(whole, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	if frac != "00" {
		b.WriteString("," + frac)
	}
	return "Rp " + b.String()
}

func formatStock(stock int) string {
	if stock == 0 {
		return "out of stock"
	}
	return strconv.Itoa(stock)
}
