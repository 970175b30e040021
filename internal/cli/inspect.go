package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/mpvbuild/internal/deps"
	"github.com/aretw0/mpvbuild/internal/packager"
	"github.com/aretw0/mpvbuild/internal/presentation/graph"
	"github.com/aretw0/mpvbuild/internal/presentation/tui"
	"github.com/aretw0/mpvbuild/internal/toolchain"
	"github.com/aretw0/mpvbuild/pkg/adapters/file"
	httpadapter "github.com/aretw0/mpvbuild/pkg/adapters/http"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/observability"
)

// ExecuteGraph writes the mermaid graph of the native dependencies. With an
// architecture, nodes that have a stamp in its prefix are highlighted.
func ExecuteGraph(ctx context.Context, w io.Writer, opts Options, archID string) error {
	g, err := deps.DefaultGraph()
	if err != nil {
		return err
	}

	recipes := make([]domain.Recipe, 0, len(g.Names()))
	for _, name := range g.Names() {
		r, _ := g.Recipe(name)
		recipes = append(recipes, r)
	}

	var overlay *graph.Overlay
	if archID != "" {
		if _, err := toolchain.Lookup(archID); err != nil {
			return err
		}
		stamps := file.New(opts.stampDir())
		overlay = &graph.Overlay{Target: domain.PlayerCore}
		for _, name := range g.Names() {
			if _, err := stamps.Load(ctx, archID, name); err == nil {
				overlay.Installed = append(overlay.Installed, name)
			}
		}
	}

	_, err = fmt.Fprint(w, graph.GenerateMermaid(recipes, overlay))
	return err
}

// ExecuteManifest regenerates MANIFEST.md from the dist tree and prints it.
func ExecuteManifest(w io.Writer, opts Options) error {
	m, err := packager.WriteManifest(opts.distDir())
	if err != nil {
		return err
	}
	return tui.WriteMarkdown(w, m.Markdown())
}

// ExecuteServe serves the dist tree until ctx is cancelled.
func ExecuteServe(ctx context.Context, opts Options, port int) error {
	logger := createLogger(opts.Debug)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: httpadapter.NewServer(opts.distDir(),
			httpadapter.WithMetrics(observability.NewMetrics()),
			httpadapter.WithLogger(logger),
		).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		printSystemMessage("Serving %s on http://localhost:%d", opts.distDir(), port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
		return nil
	}
}
