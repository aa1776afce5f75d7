package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pevans/imdbsync/catalog"
	"github.com/pevans/imdbsync/resolve"
)

func newListCommand(app *appContext) *cobra.Command {
	var limit int
	var isMovie bool

	cmd := &cobra.Command{
		Use:   "list <url>",
		Short: "Resolve every title on an IMDb list or search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := app.listingClient()
			pipeline, closeCache, err := app.pipeline(client)
			if err != nil {
				return err
			}
			defer closeCache()
			defer app.progress.Done()

			requests, err := client.ValidateLists(ctx, []catalog.ListEntry{{URL: args[0], Limit: limit}}, app.locale())
			if err != nil {
				return err
			}

			result, err := pipeline.ResolveList(ctx, requests[0], app.locale(), isMovie)
			if err != nil {
				return err
			}
			app.progress.Done()
			return printResults(cmd.OutOrStdout(), app.flags.format, []labeledResult{{Source: requests[0].URL, Result: result}})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of titles to collect (0 for all)")
	cmd.Flags().BoolVar(&isMovie, "movie", false, "Treat every title as a movie and skip the TVDb lookup")
	return cmd
}

func newIDCommand(app *appContext) *cobra.Command {
	var isMovie bool

	cmd := &cobra.Command{
		Use:   "id <imdb-id>",
		Short: "Resolve a single IMDb id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, closeCache, err := app.pipeline(app.listingClient())
			if err != nil {
				return err
			}
			defer closeCache()

			result, err := pipeline.Resolve(cmd.Context(), resolve.Request{
				Method:  resolve.SingleID,
				ID:      args[0],
				Locale:  app.locale(),
				IsMovie: isMovie,
			})
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), app.flags.format, []labeledResult{{Source: args[0], Result: result}})
		},
	}

	cmd.Flags().BoolVar(&isMovie, "movie", false, "Skip the TVDb lookup")
	return cmd
}

func newValidateCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <url>...",
		Short: "Check IMDb list and search URLs and print their canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]catalog.ListEntry, len(args))
			for i, arg := range args {
				entries[i] = catalog.ListEntry{URL: arg}
			}

			requests, err := app.listingClient().ValidateLists(cmd.Context(), entries, app.locale())
			if err != nil {
				return err
			}
			return printRequests(cmd.OutOrStdout(), app.flags.format, requests)
		},
	}
}

func newRunCommand(app *appContext) *cobra.Command {
	var isMovie bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve every list in the imdb_lists section of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(app.cfg.Lists) == 0 {
				return errors.New("no imdb_lists configured")
			}

			ctx := cmd.Context()
			client := app.listingClient()
			pipeline, closeCache, err := app.pipeline(client)
			if err != nil {
				return err
			}
			defer closeCache()
			defer app.progress.Done()

			requests, err := client.ValidateLists(ctx, app.cfg.Lists, app.locale())
			if err != nil {
				return err
			}

			results := make([]labeledResult, 0, len(requests))
			for _, req := range requests {
				result, err := pipeline.Resolve(ctx, resolve.Request{
					Method:  resolve.List,
					List:    req,
					Locale:  app.locale(),
					IsMovie: isMovie,
				})
				if err != nil {
					return err
				}
				app.progress.Done()
				results = append(results, labeledResult{Source: req.URL, Result: result})
			}
			return printResults(cmd.OutOrStdout(), app.flags.format, results)
		},
	}

	cmd.Flags().BoolVar(&isMovie, "movie", false, "Skip the TVDb lookup for every list")
	return cmd
}
