package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

// SearchOptions are the optional parameters of a catalog search.
type SearchOptions struct {
	Page              int
	PageSize          int
	Fields            []string
	SortBy            string
	SortOrder         string
	IncludeHighlights bool
	MaxResults        int
}

// Values encodes the options as /search query parameters. Zero values are omitted.
func (o SearchOptions) Values(query string) url.Values {
	v := url.Values{}
	v.Set("q", query)
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	if len(o.Fields) > 0 {
		v.Set("fields", strings.Join(o.Fields, ","))
	}
	if o.SortBy != "" {
		v.Set("sortBy", o.SortBy)
	}
	if o.SortOrder != "" {
		v.Set("sortOrder", o.SortOrder)
	}
	if o.IncludeHighlights {
		v.Set("includeHighlights", "true")
	}
	if o.MaxResults > 0 {
		v.Set("maxResults", strconv.Itoa(o.MaxResults))
	}
	return v
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var opts SearchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the PLC catalog",
		Long:  "Searches PLCs by tag, description, make, model, IP address and location.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api := NewAPIClientWithCmd(cmd)

			raw, err := api.Get(cmd.Context(), "/search", opts.Values(args[0]))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			var resp domain.SearchResponse
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("failed to parse search results: %w", err)
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printSearchTable(cmd.OutOrStdout(), &resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "Page number")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "n", 0, "Results per page (max 100)")
	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "Fields to highlight (tag, description, make, model)")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "Sort field (relevance, tag, make, model, site, cell, ip_address)")
	cmd.Flags().StringVar(&opts.SortOrder, "sort-order", "", "Sort order (ASC or DESC)")
	cmd.Flags().BoolVar(&opts.IncludeHighlights, "highlights", false, "Include highlighted fragments")
	cmd.Flags().IntVar(&opts.MaxResults, "max-results", 0, "Maximum rows considered before paging (max 1000)")

	return cmd
}

// SuggestCmd creates the suggest command.
func SuggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "List search suggestions for a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api := NewAPIClientWithCmd(cmd)

			query := url.Values{}
			query.Set("q", args[0])
			query.Set("limit", strconv.Itoa(limit))

			var resp struct {
				Suggestions []string `json:"suggestions"`
			}
			if err := api.GetData(cmd.Context(), "/search/suggestions", query, &resp); err != nil {
				return fmt.Errorf("suggestions failed: %w", err)
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), resp.Suggestions)
			}
			out := cmd.OutOrStdout()
			if len(resp.Suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions.")
				return nil
			}
			for _, s := range resp.Suggestions {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of suggestions")

	return cmd
}

func printSearchTable(w io.Writer, resp *domain.SearchResponse) {
	meta := resp.SearchMetadata
	if len(resp.Data) == 0 {
		fmt.Fprintf(w, "No results found for %q (%s).\n", meta.Query, meta.SearchType)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tMAKE\tMODEL\tIP\tLOCATION\tSCORE")
	for _, row := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.3f\n",
			row.Tag, row.Make, row.Model, orDash(row.IPAddress), row.HierarchyPath, row.RelevanceScore)
		for _, field := range domain.HighlightFields {
			if frag, ok := row.HighlightedFields[field]; ok {
				fmt.Fprintf(tw, "  %s:\t%s\t\t\t\t\n", field, frag)
			}
		}
	}
	tw.Flush()

	p := resp.Pagination
	fmt.Fprintf(w, "\nPage %d of %d (%d matches, %s search, %dms)\n",
		p.Page, p.TotalPages, meta.TotalMatches, meta.SearchType, meta.ExecutionTimeMs)
}

func printJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
