package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/blobs"
)

func blobCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "blob",
		Short: "Inspect and register blob metadata",
		Long: `Read and write blob metadata in the configured store.

Examples:
  bardfile blob put --filename cat.png --size 12KB
  bardfile blob info 0b5c7d1e-...`,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: bardfile.json in the project root)")

	withStore := func(fn func(ctx context.Context, w io.Writer, store blobs.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			return fn(cmd.Context(), cmd.OutOrStdout(), store)
		}
	}

	var (
		flags blobs.Info
		size  string
	)
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Register blob metadata and print its signed id",
		Args:  cobra.NoArgs,
	}
	putCmd.RunE = withStore(func(ctx context.Context, w io.Writer, store blobs.Store) error {
		blob, err := blobFromFlags(flags, size)
		if err != nil {
			return err
		}
		return putBlob(ctx, w, store, blob)
	})
	putCmd.Flags().StringVar(&flags.Filename, "filename", "", "Original file name")
	putCmd.Flags().StringVar(&flags.ContentType, "content-type", "", "MIME type (default application/octet-stream)")
	putCmd.Flags().StringVar(&size, "size", "0", "Byte size, e.g. 2048 or 12KB")
	putCmd.MarkFlagRequired("filename")

	infoCmd := &cobra.Command{
		Use:   "info <signed-id>",
		Short: "Print the metadata of a blob",
		Args:  cobra.ExactArgs(1),
	}
	infoCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, w io.Writer, store blobs.Store) error {
			return printBlob(ctx, w, store, args[0])
		})(cmd, args)
	}

	cmd.AddCommand(putCmd, infoCmd)
	return cmd
}

// blobFromFlags fills in the defaults of a blob given on the command line.
func blobFromFlags(info blobs.Info, size string) (blobs.Info, error) {
	var bs datasize.ByteSize
	if err := bs.UnmarshalText([]byte(size)); err != nil {
		return blobs.Info{}, errors.New(errors.ErrInvalidConfig).
			WithDetailf("--size %q is not a size", size).
			Wrap(err)
	}
	info.ByteSize = int64(bs.Bytes())
	if info.ContentType == "" {
		info.ContentType = "application/octet-stream"
	}
	return info, nil
}

func putBlob(ctx context.Context, w io.Writer, store blobs.Store, info blobs.Info) error {
	saved, err := store.Put(ctx, info)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, saved.SignedID)
	return nil
}

func printBlob(ctx context.Context, w io.Writer, store blobs.Store, signedID string) error {
	info, err := store.Info(ctx, signedID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
