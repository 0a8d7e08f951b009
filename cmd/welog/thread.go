package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"Welog/internal/blogapi"
	"Welog/internal/core/comments"
)

type threadOptions struct {
	maxLevel int
	check    bool
}

func newThreadCmd() *cobra.Command {
	var opts threadOptions
	cmd := &cobra.Command{
		Use:   "thread <postID>",
		Short: "Print the comment thread of a post",
		Long: `Print the comment thread of a post as the post page renders it.

With --check the nested thread is compared against the flat comment list
and the level of every comment is verified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || postID <= 0 {
				return fmt.Errorf("invalid post id %q", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.maxLevel <= 0 {
				opts.maxLevel = cfg.MaxCommentLevel
			}

			client, err := blogapi.New(blogapi.Config{BaseURL: cfg.APIURL, Logger: cliLogger()})
			if err != nil {
				return err
			}
			svc := comments.NewCommentService(client, cliLogger())
			return printThread(cmd.Context(), cmd.OutOrStdout(), svc, postID, opts)
		},
	}
	cmd.Flags().IntVar(&opts.maxLevel, "max-level", 0, "deepest level that accepts replies (default MAX_COMMENT_LEVEL)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "verify levels and compare with the flat comment list")
	return cmd
}

func printThread(ctx context.Context, out io.Writer, svc comments.Service, postID int64, opts threadOptions) error {
	roots, err := svc.ListRoots(ctx, postID)
	if err != nil {
		return err
	}
	tree := comments.NewTree(roots)

	fmt.Fprintf(out, "Post %d: %d comments\n", postID, tree.Count())
	for _, row := range tree.Render(nil, opts.maxLevel, nil) {
		author := "unknown"
		if row.Comment.User != nil {
			author = row.Comment.User.Name
		}
		marker := ""
		if row.Comment.Level >= opts.maxLevel {
			marker = " [no replies]"
		}
		fmt.Fprintf(out, "%s#%d %s: %s%s\n",
			strings.Repeat("  ", row.Depth), row.Comment.ID, author, oneLine(row.Comment.Content), marker)
	}

	if !opts.check {
		return nil
	}
	if err := tree.CheckLevels(); err != nil {
		return err
	}
	flat, err := svc.ListFlat(ctx, postID)
	if err != nil {
		return err
	}
	if len(flat) != tree.Count() {
		return fmt.Errorf("thread has %d comments but the flat list has %d", tree.Count(), len(flat))
	}
	fmt.Fprintln(out, "check: ok")
	return nil
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}
