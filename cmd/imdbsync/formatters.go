package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pevans/imdbsync/catalog"
	"github.com/pevans/imdbsync/resolve"
)

const (
	formatTable   = "table"
	formatJSON    = "json"
	formatCompact = "compact"
)

// labeledResult pairs a result with the input it came from.
type labeledResult struct {
	Source string          `json:"source"`
	Result *resolve.Result `json:"result"`
}

// printResults writes resolution results in the chosen format.
func printResults(w io.Writer, format string, results []labeledResult) error {
	switch format {
	case formatJSON:
		return printJSON(w, map[string]any{"results": results})
	case formatCompact:
		printResultsCompact(w, results)
		return nil
	default:
		printResultsTable(w, results)
		return nil
	}
}

// printResultsTable prints one summary row per result followed by the ids
func printResultsTable(w io.Writer, results []labeledResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display.")
		return
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			truncate(r.Source, 60),
			r.Result.Method.String(),
			strconv.Itoa(r.Result.Processed),
			strconv.Itoa(len(r.Result.MovieIDs)),
			strconv.Itoa(len(r.Result.ShowIDs)),
			strconv.Itoa(len(r.Result.Failed)),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Source", "Method", "Processed", "Movies", "Shows", "Failed"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignRight, text.AlignRight},
	))

	for _, r := range results {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", r.Source)
		fmt.Fprintf(w, "  TMDb: %s\n", joinInts(r.Result.MovieIDs))
		fmt.Fprintf(w, "  TVDb: %s\n", joinInts(r.Result.ShowIDs))
		if len(r.Result.Failed) > 0 {
			fmt.Fprintf(w, "  Failed: %s\n", strings.Join(r.Result.Failed, ", "))
		}
	}
}

// printResultsCompact prints one line per resolved id
func printResultsCompact(w io.Writer, results []labeledResult) {
	for _, r := range results {
		for _, id := range r.Result.MovieIDs {
			fmt.Fprintf(w, "tmdb %d\n", id)
		}
		for _, id := range r.Result.ShowIDs {
			fmt.Fprintf(w, "tvdb %d\n", id)
		}
		for _, id := range r.Result.Failed {
			fmt.Fprintf(w, "failed %s\n", id)
		}
	}
}

// printRequests writes validated list requests in the chosen format.
func printRequests(w io.Writer, format string, requests []catalog.ListRequest) error {
	switch format {
	case formatJSON:
		return printJSON(w, map[string]any{"lists": requests})
	case formatCompact:
		for _, req := range requests {
			fmt.Fprintln(w, req.URL)
		}
		return nil
	default:
		rows := make([][]string, 0, len(requests))
		for _, req := range requests {
			limit := "all"
			if req.Limit > 0 {
				limit = strconv.Itoa(req.Limit)
			}
			rows = append(rows, []string{req.Kind.String(), limit, req.URL})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Kind", "Limit", "URL"},
			rows,
			[]text.Align{text.AlignLeft, text.AlignRight, text.AlignLeft},
		))
		return nil
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(aligns))
	for i, align := range aligns {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func joinInts(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
