package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/internal/templates"
)

type initOptions struct {
	template     string
	title        string
	store        string
	directUpload string
}

func initCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a bardfile.yaml and a sample form",
		Long: `Write a starter bardfile.yaml and form.html into dir (default: the
current directory).

Templates:
  ` + strings.Join(templateLines(), "\n  ") + `

Examples:
  bardfile init
  bardfile init uploads --template=gallery --store=badger`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "single", "Starter template ("+strings.Join(templates.List(), ", ")+")")
	cmd.Flags().StringVar(&opts.title, "title", "bard-file preview", "Preview page title")
	cmd.Flags().StringVar(&opts.store, "store", config.StoreMemory, "Blob store (memory, badger, s3)")
	cmd.Flags().StringVar(&opts.directUpload, "directupload", "", "Direct upload URL of the fields")

	return cmd
}

func templateLines() []string {
	var lines []string
	for _, name := range templates.List() {
		tmpl, _ := templates.Get(name)
		lines = append(lines, fmt.Sprintf("%-10s %s", name, tmpl.Description))
	}
	return lines
}

func runInit(w io.Writer, dir string, opts initOptions) error {
	switch opts.store {
	case config.StoreMemory, config.StoreBadger, config.StoreS3:
	default:
		return errors.New(errors.ErrInvalidConfig).
			WithDetailf("unknown blob store %q", opts.store).
			WithSuggestion("Use memory, badger or s3")
	}
	if config.Exists(dir) {
		return errors.New(errors.ErrInvalidConfig).
			WithDetail("A bardfile config already exists in " + dir)
	}

	tmpl, err := templates.Get(opts.template)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := tmpl.Create(dir, templates.Config{
		Title:        opts.title,
		Store:        opts.store,
		DirectUpload: opts.directUpload,
	}); err != nil {
		return err
	}

	for _, p := range tmpl.Paths() {
		fmt.Fprintf(w, "  created %s\n", filepath.Join(dir, p))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  To preview the form:")
	fmt.Fprintln(w)
	if dir != "." {
		fmt.Fprintf(w, "    cd %s\n", dir)
	}
	fmt.Fprintln(w, "    bardfile serve")
	if opts.store == config.StoreS3 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Set blobs.bucket in bardfile.yaml before serving.")
	}
	return nil
}
