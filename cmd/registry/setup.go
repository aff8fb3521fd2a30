package main

import (
	"context"
	"fmt"

	"github.com/rkstgr/papermake-sub000/configuration"
	"github.com/rkstgr/papermake-sub000/renderlog"
	"github.com/rkstgr/papermake-sub000/storagedriver"
	"github.com/rkstgr/papermake-sub000/storagedriver/filesystem"
	"github.com/rkstgr/papermake-sub000/storagedriver/inmemory"
)

// openStorageDriver constructs the storagedriver.StorageDriver named
// by cfg.Storage. The configuration selects a driver by name; with
// only two drivers shipped there is no runtime factory registry.
func openStorageDriver(cfg configuration.DriverConfig) (storagedriver.StorageDriver, error) {
	switch cfg.Name {
	case "", "inmemory":
		return inmemory.New(), nil
	case "filesystem":
		root := cfg.Parameters.String("root")
		if root == "" {
			return nil, fmt.Errorf("storage driver %q requires a \"root\" parameter", cfg.Name)
		}
		return filesystem.New(root)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Name)
	}
}

// openRenderLog constructs the renderlog.Store named by cfg.RenderLog.
func openRenderLog(ctx context.Context, cfg configuration.DriverConfig) (renderlog.Store, error) {
	switch cfg.Name {
	case "", "memory":
		return renderlog.NewMemoryStore(), nil
	case "sqlite":
		path := cfg.Parameters.String("path")
		if path == "" {
			return nil, fmt.Errorf("render log backend %q requires a \"path\" parameter", cfg.Name)
		}
		return renderlog.OpenSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("unknown render log backend %q", cfg.Name)
	}
}
