package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/chazu/rhinophore/pkg/config"
	"github.com/chazu/rhinophore/pkg/preview"
	"github.com/chazu/rhinophore/pkg/shape"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliFlags holds the flags shared between commands.
type cliFlags struct {
	verbose bool
	json    bool
	flatten bool
	out     string
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}
	root := &cobra.Command{
		Use:          "rhinophore",
		Short:        "Procedural rhinophore tube meshes",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "print renderer buffers as JSON")
	root.PersistentFlags().BoolVar(&flags.flatten, "flatten", false, "merge each shape with its children into one mesh")
	root.PersistentFlags().StringVarP(&flags.out, "out", "o", "", "write output to a file instead of stdout")

	root.AddCommand(
		newGenerateCmd(flags),
		newEvalCmd(flags),
		newOptionsCmd(),
		newServeCmd(flags),
	)
	return root
}

func (f *cliFlags) app(stderr io.Writer) *App {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	a := NewAppWithLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	a.Flatten = f.flatten
	return a
}

func newGenerateCmd(flags *cliFlags) *cobra.Command {
	var (
		kind    string
		seed    int64
		sets    []string
		at      string
		cfgPath string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one shape, or every shape of a scene file",
		Example: `  rhinophore generate --kind ribbed --seed 3 --set length=8 --set tension=0.2
  rhinophore generate --config examples/garden.toml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := flags.app(cmd.ErrOrStderr())
			if cfgPath != "" {
				return flags.emit(cmd, a.LoadScene(cfgPath))
			}
			req, err := buildRequest(kind, seed, sets, at)
			if err != nil {
				return err
			}
			return flags.emit(cmd, a.Generate(req))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(shape.KindSimple), "shape kind: "+kindList())
	cmd.Flags().Int64VarP(&seed, "seed", "s", 1, "noise seed")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "option override as key=value (repeatable)")
	cmd.Flags().StringVar(&at, "at", "", "offset as x,y,z")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "scene file (.toml, .yaml, .json)")
	return cmd
}

func newEvalCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "eval [recipe]",
		Short: "Evaluate a recipe file, or stdin when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				src []byte
				err error
			)
			if len(args) == 1 {
				src, err = os.ReadFile(args[0])
			} else {
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			return flags.emit(cmd, flags.app(cmd.ErrOrStderr()).Evaluate(string(src)))
		},
	}
}

func newOptionsCmd() *cobra.Command {
	var (
		kind   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List shape options, or print a preset scene file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "" {
				if kind == "" {
					kind = string(shape.KindSimple)
				}
				k, err := shape.ParseKind(kind)
				if err != nil {
					return err
				}
				scene := shape.NewScene()
				req := shape.NewRequest(k)
				req.Name = string(k)
				if err := scene.Add(req); err != nil {
					return err
				}
				data, err := config.Marshal(scene, config.Format(format), config.EncodeOptions{Sliders: true, Defaults: true})
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return printSchema(cmd.OutOrStdout(), kind)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list options read by this kind")
	cmd.Flags().StringVarP(&format, "format", "f", "", "print a preset file in this format (toml, yaml, json)")
	return cmd
}

func newServeCmd(flags *cliFlags) *cobra.Command {
	var addr, watch string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve generated meshes to a renderer over a websocket",
		Example: `  rhinophore serve --watch examples/garden.rhino`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			a := NewAppWithLogger(logger)
			a.Flatten = flags.flatten
			srv := preview.NewServer(a, logger)
			if watch != "" {
				go func() {
					if err := srv.Watch(ctx, watch); err != nil {
						logger.Error("watch", "path", watch, "err", err)
						stop()
					}
				}()
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "recipe or scene file to regenerate and push on every save")
	return cmd
}

// emit prints the result as JSON or as a summary table. Any result errors
// make the command fail.
func (f *cliFlags) emit(cmd *cobra.Command, result EvalResult) error {
	for _, warn := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warn.Message)
	}
	if err := result.Err(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	if f.json {
		enc := json.NewEncoder(w)
		return enc.Encode(result)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tVERTICES\tTRIANGLES\tCOLOR")
	for _, m := range result.Meshes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", m.PartName, m.VertexCount(), m.TriangleCount(), m.Color)
	}
	return tw.Flush()
}

func printSchema(w io.Writer, kind string) error {
	var filter shape.Kind
	if kind != "" {
		k, err := shape.ParseKind(kind)
		if err != nil {
			return err
		}
		filter = k
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tDEFAULT\tRANGE\tDOC")
	for _, s := range shape.Schema() {
		if filter != "" && !s.UsedBy(filter) {
			continue
		}
		rng := "-"
		switch {
		case s.Fixed:
			rng = "fixed"
		case s.Type == shape.TypeNumber:
			rng = fmt.Sprintf("[%g, %g]", s.Min, s.Max)
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\n", s.Key, s.Type, s.Value, rng, s.Doc)
	}
	return tw.Flush()
}

// buildRequest turns generate flags into a shape request.
func buildRequest(kind string, seed int64, sets []string, at string) (shape.Request, error) {
	k, err := shape.ParseKind(kind)
	if err != nil {
		return shape.Request{}, err
	}
	req := shape.NewRequest(k)
	req.Seed = seed
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return shape.Request{}, fmt.Errorf("--set %q: expected key=value", kv)
		}
		if err := req.Options.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return shape.Request{}, err
		}
	}
	if at != "" {
		offset, err := parseVec(at)
		if err != nil {
			return shape.Request{}, fmt.Errorf("--at: %w", err)
		}
		req.Offset = offset
	}
	return req, nil
}

func parseVec(s string) (v3.Vec, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return v3.Vec{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return v3.Vec{}, err
		}
		c[i] = v
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func kindList() string {
	kinds := shape.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
