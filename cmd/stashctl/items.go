package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"belongings/internal/client"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var itemQuery client.ItemQuery

var itemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"i"},
	Short:   "List items",
}

var itemsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List items, optionally filtered by folder, text, category or tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := newClient().ListItems(cmd.Context(), itemQuery)
		if err != nil {
			return fmt.Errorf("list items: %s", apiMessage(err))
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tBRAND\tCATEGORY\tVALUE\tTAGS\tUPDATED")
		for _, item := range page.Items {
			value := "-"
			if item.EstimatedValue != nil {
				value = item.Currency + " " + humanize.CommafWithDigits(*item.EstimatedValue, 2)
			} else if item.PurchasePrice != nil {
				value = item.Currency + " " + humanize.CommafWithDigits(*item.PurchasePrice, 2) + " (paid)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				item.Name, dash(item.Brand), dash(item.Category), value,
				dash(strings.Join(item.Tags, ",")), humanize.Time(item.UpdatedAt))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		shown := page.Offset + len(page.Items)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d-%d of %s", page.Offset+1, shown, humanize.Comma(int64(page.TotalCount)))
		if page.HasMore {
			fmt.Fprintf(cmd.OutOrStdout(), " (next: --offset %d)", shown)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	f := itemsLsCmd.Flags()
	f.StringVar(&itemQuery.FolderID, "folder", "", "Only items directly in this folder")
	f.BoolVar(&itemQuery.Unfiled, "unfiled", false, "Only items without a folder")
	f.StringVarP(&itemQuery.Query, "query", "q", "", "Full-text search")
	f.StringVar(&itemQuery.Category, "category", "", "Filter by category")
	f.StringVar(&itemQuery.Tag, "tag", "", "Filter by tag")
	f.StringVar(&itemQuery.Sort, "sort", "", "Sort by updated, created, name or value")
	f.BoolVar(&itemQuery.Ascending, "asc", false, "Sort ascending")
	f.IntVar(&itemQuery.Limit, "limit", 0, "Page size")
	f.IntVar(&itemQuery.Offset, "offset", 0, "Items to skip")

	itemsCmd.AddCommand(itemsLsCmd)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
