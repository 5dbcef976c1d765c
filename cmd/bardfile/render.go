package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/bardfile"
	"github.com/vango-dev/bardfile/pkg/blobs"
	"github.com/vango-dev/bardfile/pkg/component"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/reconcile"
	"github.com/vango-dev/bardfile/pkg/render"
)

type renderOptions struct {
	markup   string
	config   string
	field    config.FieldConfig
	shadow   bool
	pretty   bool
	comments bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Pre-render bard-file fields to HTML",
		Long: `Render every <bard-file> element of a markup file and print the result.

Without --markup a single field is built from the field flags. Use
"--markup -" to read the markup from stdin. Value attributes are resolved
against the blob store of --config.

Examples:
  bardfile render --name "post[images][]" --multiple --accepts image
  bardfile render --markup form.html --pretty
  cat form.html | bardfile render --markup - --shadow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.markup, "markup", "m", "", "HTML file holding the fields, - for stdin")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "Config file whose blob store resolves values")
	cmd.Flags().StringVar(&opts.field.Name, "name", config.DefaultFieldName, "Field name")
	cmd.Flags().StringVar(&opts.field.ID, "id", "", "Field id")
	cmd.Flags().StringVar(&opts.field.Label, "label", "", "Label text (needs --id)")
	cmd.Flags().BoolVar(&opts.field.Multiple, "multiple", false, "Accept several files")
	cmd.Flags().BoolVar(&opts.field.Required, "required", false, "Require a file")
	cmd.Flags().StringVar(&opts.field.Accepts, "accepts", "", "Accepted kinds: image, video, pdf")
	cmd.Flags().StringVar(&opts.field.Max, "max", "", "Maximum file size, e.g. 5MB")
	cmd.Flags().StringVar(&opts.field.DirectUpload, "directupload", "", "Direct upload URL")
	cmd.Flags().BoolVar(&opts.shadow, "shadow", false, "Render native shadow roots as declarative templates")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&opts.comments, "comments", false, "Keep slot marker comments")

	return cmd
}

// readMarkup returns the markup opts point at.
func readMarkup(in io.Reader, opts renderOptions) (string, error) {
	switch opts.markup {
	case "":
		cfg := config.New()
		cfg.Field = opts.field
		if err := cfg.Validate(); err != nil {
			return "", err
		}
		return cfg.FieldMarkup(), nil
	case "-":
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(opts.markup)
		if err != nil {
			return "", errors.New(errors.ErrMarkup).Wrap(err)
		}
		return string(data), nil
	}
}

func runRender(ctx context.Context, w io.Writer, in io.Reader, opts renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	markup, err := readMarkup(in, opts)
	if err != nil {
		return err
	}

	var store blobs.Store
	if opts.config != "" {
		cfg, err := loadConfig(opts.config)
		if err != nil {
			return err
		}
		s, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		store = s
	}

	doc := dom.NewDocument()
	root := doc.CreateElement("body")
	if err := dom.AppendMarkup(doc, root, markup); err != nil {
		return errors.New(errors.ErrMarkup).Wrap(err)
	}

	sched := component.NewScheduler(reconcile.New(doc))
	reg := component.NewRegistry(sched)
	defer reg.Close()

	def := bardfile.Definition(store)
	def.NativeShadow = opts.shadow
	if err := reg.Define(def); err != nil {
		return err
	}
	hosts, err := reg.Upgrade(root)
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		return errors.New(errors.ErrMarkup).
			WithDetail("The markup has no " + bardfile.Tag + " element")
	}
	if err := sched.Flush(ctx); err != nil {
		return err
	}

	r := render.NewRenderer(render.RendererConfig{
		Pretty:            opts.pretty,
		DeclarativeShadow: opts.shadow,
		OmitComments:      !opts.comments,
	})
	if err := r.RenderChildren(w, root); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
