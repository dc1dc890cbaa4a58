package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/gratitude-journal/internal/convert"
)

func (c *cli) entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"e"},
		Short:   "Manage journal entries",
	}
	cmd.AddCommand(c.entriesListCmd(), c.entriesAddCmd(), c.entriesGetCmd(), c.entriesRmCmd())
	return cmd
}

func (c *cli) entriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.authed()
			if err != nil {
				return err
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			out := []convert.EntryResponse{}
			if _, err := api.do(ctx, http.MethodGet, "/calendar", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (c *cli) entriesAddCmd() *cobra.Command {
	var (
		req      convert.EntryRequest
		dataFile string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dataFile != "" {
				b, err := readAll(dataFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Content = string(b)
			}
			if req.EntryDate == "" {
				req.EntryDate = time.Now().Format(convert.DateLayout)
			}
			api, err := c.authed()
			if err != nil {
				return err
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			var out convert.EntryResponse
			if _, err := api.do(ctx, http.MethodPost, "/calendar", req, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "entry title")
	cmd.Flags().StringVarP(&req.Content, "content", "c", "", "entry text")
	cmd.Flags().StringVarP(&dataFile, "file", "f", "", "read the text from a file ('-'=stdin)")
	cmd.Flags().StringVarP(&req.EntryDate, "date", "d", "", "entry date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) entriesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := c.authed()
			if err != nil {
				return err
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			var out convert.EntryResponse
			if _, err := api.do(ctx, http.MethodGet, "/calendar/"+id, nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (c *cli) entriesRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := c.authed()
			if err != nil {
				return err
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			if _, err := api.do(ctx, http.MethodDelete, "/calendar/"+id, nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func parseID(s string) (string, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("bad entry id %q", s)
	}
	return strconv.FormatInt(id, 10), nil
}

func readAll(p string, stdin io.Reader) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}
