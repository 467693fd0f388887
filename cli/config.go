package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/floworx/floworx/engine/clientconfig"
	clientconfigrouter "github.com/floworx/floworx/engine/clientconfig/router"
	"github.com/floworx/floworx/engine/clientconfig/uc"
	"github.com/floworx/floworx/engine/infra/server"
	"github.com/floworx/floworx/pkg/config"
	"github.com/floworx/floworx/pkg/logger"
)

const (
	formatJSON      = "json"
	formatTable     = "table"
	defaultCLIActor = "cli"
)

// ConfigCmd groups the commands that read and write tenant configurations
// directly against the configured store.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and update client configurations",
	}
	cmd.AddCommand(
		configGetCmd(),
		configSetCmd(),
		configHistoryCmd(),
		configSchemaCmd(),
	)
	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <client-id>",
		Short: "Print the current configuration of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(cmd, func(ctx context.Context, deps *server.Dependencies) error {
				out, err := deps.Get.Execute(ctx, &uc.GetInput{ClientID: args[0]})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out.Config)
			})
		},
	}
}

func configSetCmd() *cobra.Command {
	var (
		patchText string
		patchFile string
		ifMatch   int
		actor     string
	)
	cmd := &cobra.Command{
		Use:   "set <client-id>",
		Short: "Apply a partial update to a client configuration",
		Long: `Apply a JSON merge patch through the full update pipeline.

The patch is read from --patch, or from --file ("-" reads stdin). Version
conflicts are retried with a fresh read unless --if-match pins the version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPatch(cmd.InOrStdin(), patchText, patchFile)
			if err != nil {
				return err
			}
			patch, err := clientconfig.DecodePatch(raw)
			if err != nil {
				return err
			}
			in := &uc.UpdateInput{ClientID: args[0], Patch: patch, Actor: actor}
			if cmd.Flags().Changed("if-match") {
				v := ifMatch
				in.IfMatch = &v
			}
			return withDependencies(cmd, func(ctx context.Context, deps *server.Dependencies) error {
				out, err := uc.UpdateWithRetry(ctx, deps.Update, in, deps.Retry)
				if err != nil {
					var verrs clientconfig.ValidationErrors
					if errors.As(err, &verrs) {
						writeValidationErrors(cmd.ErrOrStderr(), verrs)
					}
					return err
				}
				return writeJSON(cmd.OutOrStdout(), clientconfigrouter.UpdateResponse{
					OK:        true,
					Version:   out.Version,
					Overrides: out.Overrides,
				})
			})
		},
	}
	cmd.Flags().StringVar(&patchText, "patch", "", "Patch document as inline JSON")
	cmd.Flags().StringVarP(&patchFile, "file", "f", "", `Path to a JSON patch file, or "-" for stdin`)
	cmd.Flags().IntVar(&ifMatch, "if-match", 0, "Fail unless the stored version equals this value")
	cmd.Flags().StringVar(&actor, "actor", defaultCLIActor, "Name recorded as updated_by in history")
	cmd.Flags().Int("conflict-retries", 0, "Retries after a version conflict (overrides pipeline.conflict_retries)")
	cmd.MarkFlagsMutuallyExclusive("patch", "file")
	cmd.MarkFlagsOneRequired("patch", "file")
	return cmd
}

func configHistoryCmd() *cobra.Command {
	var (
		limit  int
		format string
	)
	cmd := &cobra.Command{
		Use:   "history <client-id>",
		Short: "List past versions of a client configuration, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatTable {
				return fmt.Errorf("unsupported format: %s", format)
			}
			return withDependencies(cmd, func(ctx context.Context, deps *server.Dependencies) error {
				out, err := deps.History.Execute(ctx, &uc.HistoryInput{ClientID: args[0], Limit: limit})
				if err != nil {
					return err
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), out.Entries)
				}
				return writeHistoryTable(cmd.OutOrStdout(), out.Entries)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (default pipeline.history_limit)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format (table, json)")
	return cmd
}

func configSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a stored client configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), clientconfig.JSONSchema())
		},
	}
}

func withDependencies(cmd *cobra.Command, fn func(context.Context, *server.Dependencies) error) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	deps := server.NewDependencies(cfg, store, nil)
	defer func() {
		if err := deps.Close(); err != nil {
			logger.FromContext(ctx).Warn("Failed to close store", "error", err)
		}
	}()
	return fn(ctx, deps)
}

func readPatch(stdin io.Reader, text, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(text) != "":
		return []byte(text), nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read patch from stdin: %w", err)
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read patch file: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("a patch is required: use --patch or --file")
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	out := pretty.Pretty(data)
	if colorEnabled(w) {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeValidationErrors(w io.Writer, verrs clientconfig.ValidationErrors) {
	for _, fe := range verrs {
		fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
	}
}

func writeHistoryTable(w io.Writer, entries []clientconfig.HistoryEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tUPDATED_AT\tUPDATED_BY")
	for i := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n",
			entries[i].Version,
			entries[i].UpdatedAt.UTC().Format(time.RFC3339),
			entries[i].UpdatedBy,
		)
	}
	return tw.Flush()
}
