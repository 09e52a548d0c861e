package cli

import (
	"fmt"
	"io"
	"memo-app/services"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memos as a JSON array",
		Long:  "Export every memo (without comments) as a pretty-printed JSON array, to stdout or a file.",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.app.Memos.ExportAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q}`+"\n", output)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Import memos from a JSON array",
		Long:  "Import memos produced by export. Records whose id already exists are skipped. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	records, err := services.ParseImport(data)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.app.View.Import(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d,"skipped":%d}`+"\n", result.Imported, result.Skipped)
	return nil
}
