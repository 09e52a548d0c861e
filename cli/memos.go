package cli

import (
	"fmt"
	"memo-app/database"
	"memo-app/models"
	"memo-app/viewmodel"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memos, newest first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().StringP("category", "c", "", "Only memos in this category")
	cmd.Flags().String("title", "", "Only memos with this exact title")
	cmd.Flags().Int("comments", viewmodel.CommentPageSize, "Latest comments shown per memo")
	cmd.Flags().StringP("tag", "t", "", "Only memos with a hashtag matching this glob")
	cmd.Flags().StringP("format", "f", "json", "Output format: json, yaml or text")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	title, _ := cmd.Flags().GetString("title")
	visible, _ := cmd.Flags().GetInt("comments")
	tag, _ := cmd.Flags().GetString("tag")
	format, _ := cmd.Flags().GetString("format")

	var tagFilter *viewmodel.HashtagFilter
	if tag != "" {
		f, err := viewmodel.NewHashtagFilter(tag)
		if err != nil {
			return err
		}
		tagFilter = f
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var memos []models.Memo
	switch {
	case category != "":
		memos, err = s.app.Memos.FindMemos(cmd.Context(), database.IndexCategory, category)
	case title != "":
		memos, err = s.app.Memos.FindMemos(cmd.Context(), database.IndexTitle, title)
	default:
		memos = s.app.View.View()
	}
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	memos = viewmodel.Sorted(memos)
	if category != "" && title != "" {
		memos = filterTitle(memos, title)
	}
	if tagFilter != nil {
		memos = tagFilter.Apply(memos)
	}

	for i := range memos {
		memos[i].Comments = viewmodel.PageComments(memos[i].Comments, visible).Comments
	}
	return printMemos(cmd.OutOrStdout(), format, memos)
}

func filterTitle(memos []models.Memo, title string) []models.Memo {
	kept := memos[:0]
	for _, m := range memos {
		if m.Title == title {
			kept = append(kept, m)
		}
	}
	return kept
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a memo",
		Long:  "Add a memo. Content is the positional args joined with spaces, or --content.",
		RunE:  runAdd,
	}

	cmd.Flags().String("title", "", "Title (required)")
	cmd.Flags().StringP("category", "c", "", "Category (required)")
	cmd.Flags().String("content", "", "Content")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated hashtags")

	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("category")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	category, _ := cmd.Flags().GetString("category")
	content, _ := cmd.Flags().GetString("content")
	tags, _ := cmd.Flags().GetString("tags")

	if len(args) > 0 {
		content = strings.Join(args, " ")
	}

	req := models.CreateMemoRequest{
		Title:    title,
		Category: category,
		Content:  content,
		Hashtags: models.ParseHashtags(tags),
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.Validator.Validate(&req); err != nil {
		return err
	}

	saved, err := s.app.View.AddMemo(cmd.Context(), models.Memo{MemoRecord: models.MemoRecord{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Hashtags: req.Hashtags,
	}})
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), saved)
}

func newCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <memoId> <content>",
		Short: "Comment on a memo",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runComment,
	}
}

func runComment(cmd *cobra.Command, args []string) error {
	memoID, err := parseMemoID(args[0])
	if err != nil {
		return err
	}

	req := models.CommentRequest{Content: strings.Join(args[1:], " ")}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.Validator.Validate(&req); err != nil {
		return err
	}

	saved, err := s.app.View.AddComment(cmd.Context(), memoID, models.MemoComment{Content: req.Content})
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), saved)
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <memoId>",
		Short: "Delete a memo",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}
}

func runRm(cmd *cobra.Command, args []string) error {
	memoID, err := parseMemoID(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.View.DeleteMemo(cmd.Context(), memoID); err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%d}`+"\n", memoID)
	return nil
}

func parseMemoID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid memo id %q", arg)
	}
	return id, nil
}
