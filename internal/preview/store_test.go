package preview

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/blobs"
)

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(t *testing.T, s blobs.Store)
	}{
		{
			"memory without cache",
			func(c *config.Config) { c.Blobs.CacheTTL = "0" },
			func(t *testing.T, s blobs.Store) {
				if _, ok := s.(*blobs.MemoryStore); !ok {
					t.Errorf("store = %T, want *blobs.MemoryStore", s)
				}
			},
		},
		{
			"memory with cache",
			func(c *config.Config) {},
			func(t *testing.T, s blobs.Store) {
				if _, ok := s.(*blobs.CachedStore); !ok {
					t.Errorf("store = %T, want *blobs.CachedStore", s)
				}
			},
		},
		{
			"badger",
			func(c *config.Config) {
				c.Blobs.Store = config.StoreBadger
				c.Blobs.Dir = filepath.Join(t.TempDir(), "blobs")
				c.Blobs.CacheTTL = "0"
			},
			func(t *testing.T, s blobs.Store) {
				if _, ok := s.(*blobs.BadgerStore); !ok {
					t.Errorf("store = %T, want *blobs.BadgerStore", s)
				}
			},
		},
		{
			"s3",
			func(c *config.Config) {
				c.Blobs.Store = config.StoreS3
				c.Blobs.Bucket = "uploads"
				c.Blobs.Region = "eu-west-1"
				c.Blobs.CacheTTL = "0"
			},
			func(t *testing.T, s blobs.Store) {
				if _, ok := s.(*blobs.S3Store); !ok {
					t.Errorf("store = %T, want *blobs.S3Store", s)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			store, closeFn, err := OpenStore(cfg)
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer closeFn()
			tt.check(t, store)
		})
	}
}

func TestOpenStoreBadgerRoundTrip(t *testing.T) {
	cfg := config.New()
	cfg.Blobs.Store = config.StoreBadger
	cfg.Blobs.Dir = filepath.Join(t.TempDir(), "nested", "blobs")
	cfg.Blobs.CacheTTL = "0"

	store, closeFn, err := OpenStore(cfg)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	info, err := store.Put(context.Background(), blobs.Info{Filename: "a.pdf", ContentType: "application/pdf", ByteSize: 3})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, closeFn, err = OpenStore(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeFn()
	got, err := store.Info(context.Background(), info.SignedID)
	if err != nil || got.Filename != "a.pdf" {
		t.Errorf("Info after reopen = %+v, %v", got, err)
	}
}

func TestOpenStoreErrors(t *testing.T) {
	cfg := config.New()
	cfg.Blobs.Store = "redis"
	if _, _, err := OpenStore(cfg); !errors.HasCode(err, errors.ErrInvalidConfig) {
		t.Errorf("unknown store = %v, want E004", err)
	}

	cfg = config.New()
	cfg.Blobs.CacheTTL = "later"
	if _, _, err := OpenStore(cfg); !errors.HasCode(err, errors.ErrInvalidConfig) {
		t.Errorf("bad ttl = %v, want E004", err)
	}
}
