// Command registry is the CLI surface over the template registry
// core: publish, resolve, render, list-templates, and render-log
// queries, each operating against whichever storage driver and
// render log backend the configuration selects.
package main

import (
	"context"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/rkstgr/papermake-sub000/internal/dcontext"
)

var ctx = dcontext.WithLogger(context.Background(), logrus.StandardLogger().WithField("go.version", runtime.Version()))

func main() {
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
