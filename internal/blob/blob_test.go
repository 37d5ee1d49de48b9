package blob

import (
	"context"
	"testing"

	"worklog/internal/config"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	fsStore, err := Open(ctx, config.Blob{Driver: "fs", FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", fsStore.Driver())
	}

	mem, err := Open(ctx, config.Blob{Driver: "memory"})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if mem.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", mem.Driver())
	}

	s3Store, err := Open(ctx, config.Blob{Driver: "s3", S3: config.S3{Bucket: "exports", Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000", PathStyle: true}})
	if err != nil {
		t.Fatalf("open s3: %v", err)
	}
	if s3Store.Driver() != DriverS3 {
		t.Fatalf("expected s3 driver, got %s", s3Store.Driver())
	}

	if _, err := Open(ctx, config.Blob{Driver: "s3"}); err == nil {
		t.Fatalf("expected bucket required error")
	}
	if _, err := Open(ctx, config.Blob{Driver: "gcs"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
