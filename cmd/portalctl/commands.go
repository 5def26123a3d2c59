package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/normalization"
)

var errHostRequired = errors.New("--host is required")

func newEntitiesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities portalctl can open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := opts.catalog.Entries()
			if opts.output == "json" {
				return writeJSON(opts.out, entries)
			}
			w := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENTITY\tSERVICE\tQUERY\tKEY")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Entity, e.Service, e.QueryAction, strings.Join(e.KeyFields, ","))
			}
			return w.Flush()
		},
	}
}

// listing is the part of a list snapshot portalctl renders.
type listing struct {
	Rows      []map[string]any `json:"rows"`
	Total     int              `json:"total"`
	Error     bool             `json:"isError"`
	ErrorText string           `json:"error"`
	Pager     string           `json:"pager"`
}

func newListCmd(opts *options) *cobra.Command {
	var (
		filters []string
		seeds   []string
		global  string
		sorting []string
		page    int
		size    int
	)
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Fetch one page of an entity list",
		Example: `  portalctl list roles --host H1 --filter roleId=adm --sort roleId:desc --size 25
  portalctl list role-users --host H1 --seed roleId=admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.host) == "" {
				return errHostRequired
			}
			columns, err := parseColumnFilters(filters)
			if err != nil {
				return err
			}
			nav, err := parseSeeds(seeds)
			if err != nil {
				return err
			}
			entry, view, err := opts.open(args[0], false)
			if err != nil {
				return err
			}
			defer view.Close()

			view.SetColumnFilters(columns)
			if global != "" {
				view.SetGlobalFilter(global)
			}
			view.SetSorting(parseSorting(sorting))
			view.SetPagination(domain.Pagination{PageIndex: page - 1, PageSize: size})
			if err := view.Mount(nav); err != nil {
				return err
			}
			view.Wait()

			var result listing
			raw, err := json.Marshal(view.Snapshot())
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &result); err != nil {
				return err
			}
			if result.Error {
				return fmt.Errorf("list %s: %s", entry.Entity, result.ErrorText)
			}
			if opts.output == "json" {
				return writeJSON(opts.out, json.RawMessage(raw))
			}
			return writeTable(opts.out, entry, result)
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&filters, "filter", nil, "column filter as id=value (repeatable)")
	f.StringArrayVar(&seeds, "seed", nil, "navigation seed as field=value (repeatable)")
	f.StringVar(&global, "global", "", "global filter text")
	f.StringArrayVar(&sorting, "sort", nil, "sort key as id or id:desc (repeatable)")
	f.IntVar(&page, "page", 1, "page number, starting at 1")
	f.IntVar(&size, "size", domain.DefaultPageSize, "rows per page")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	var (
		row string
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "delete <entity>",
		Short: "Delete one row after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(row) == "" {
				return errors.New("--row is required")
			}
			entry, view, err := opts.open(args[0], yes)
			if err != nil {
				return err
			}
			defer view.Close()

			err = view.DeleteJSON(cmd.Context(), json.RawMessage(row))
			if errors.Is(err, usecase.ErrConfirmationDeclined) {
				fmt.Fprintln(opts.errOut, "delete cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "deleted %s\n", entry.Entity)
			return nil
		},
	}
	cmd.Flags().StringVar(&row, "row", "", "row as JSON, e.g. '{\"hostId\":\"H1\",\"roleId\":\"admin\"}'")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newFreshCmd(opts *options) *cobra.Command {
	var row string
	cmd := &cobra.Command{
		Use:   "fresh <entity>",
		Short: "Fetch the current version of a row, as opened for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(row) == "" {
				return errors.New("--row is required")
			}
			_, view, err := opts.open(args[0], false)
			if err != nil {
				return err
			}
			defer view.Close()
			return view.UpdateJSON(cmd.Context(), json.RawMessage(row), "")
		},
	}
	cmd.Flags().StringVar(&row, "row", "", "row as JSON")
	return cmd
}

func newSubmitCmd(opts *options) *cobra.Command {
	var (
		mode string
		data string
	)
	cmd := &cobra.Command{
		Use:   "submit <entity>",
		Short: "Send a create or update form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(data) == "" {
				return errors.New("--data is required")
			}
			entry, view, err := opts.open(args[0], false)
			if err != nil {
				return err
			}
			defer view.Close()
			if err := view.SubmitJSON(cmd.Context(), mode, json.RawMessage(data)); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "%s %s accepted\n", mode, entry.Entity)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", domain.SubmitCreate, "create or update")
	cmd.Flags().StringVar(&data, "data", "", "form values as a JSON object")
	return cmd
}

func parseColumnFilters(raw []string) ([]domain.ColumnFilter, error) {
	columns := make([]domain.ColumnFilter, 0, len(raw))
	for _, pair := range raw {
		id, value, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid filter %q: want id=value", pair)
		}
		columns = append(columns, domain.ColumnFilter{ID: id, Value: value})
	}
	return columns, nil
}

func parseSeeds(raw []string) (domain.NavigationState, error) {
	if len(raw) == 0 {
		return domain.NavigationState{}, nil
	}
	data := make(map[string]any, len(raw))
	for _, pair := range raw {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return domain.NavigationState{}, fmt.Errorf("invalid seed %q: want field=value", pair)
		}
		data[field] = value
	}
	return domain.NavigationState{Data: data}, nil
}

func parseSorting(raw []string) []domain.SortKey {
	keys := make([]domain.SortKey, 0, len(raw))
	for _, s := range raw {
		id, dir, _ := strings.Cut(s, ":")
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		keys = append(keys, domain.SortKey{ID: id, Desc: strings.EqualFold(strings.TrimSpace(dir), "desc")})
	}
	return keys
}

// columnsOf orders key fields first, then the remaining fields by name.
func columnsOf(entry usecase.Entry, rows []map[string]any) []string {
	seen := map[string]struct{}{}
	var columns []string
	for _, k := range entry.KeyFields {
		seen[k] = struct{}{}
		columns = append(columns, k)
	}
	var rest []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func writeTable(out io.Writer, entry usecase.Entry, result listing) error {
	columns := columnsOf(entry, result.Rows)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = normalization.StringFromAny(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, result.Pager)
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
