// Package urlkey generates unique URL keys for catalog items.
//
// A Generator derives a base key from a display name and appends -1, -2, ...
// until the candidate has not been issued by this Generator before. Entries in
// the URL rewrite registry that hold the accepted candidate are evicted, so the
// key is reclaimed for the item being uploaded.
package urlkey

import (
	"context"
	"fmt"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "urlkey"

// Suffix is the extension marker registry request paths carry.
const Suffix = ".html"

// Generator issues unique URL keys. The issued set lives as long as the
// Generator; create one per run. A Generator is not safe for concurrent use.
type Generator struct {
	registry port.URLRewriteRepository
	issued   map[string]struct{}
}

// NewGenerator creates a Generator backed by registry.
func NewGenerator(registry port.URLRewriteRepository) *Generator {
	return &Generator{
		registry: registry,
		issued:   make(map[string]struct{}),
	}
}

// Generate returns a URL key for text that this Generator has not issued
// before. The returned key carries no extension marker.
func (g *Generator) Generate(ctx context.Context, text string) (string, error) {
	base := Slugify(text)
	if base == "" {
		return "", exception.NewUploadErrorf(moduleName, exception.KindInvalidValue,
			"'%s' does not contain any character usable in a URL key", text)
	}

	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		requestPath := candidate + Suffix
		if _, ok := g.issued[requestPath]; ok {
			continue
		}
		if err := g.evict(ctx, requestPath); err != nil {
			return "", err
		}
		g.issued[requestPath] = struct{}{}
		return candidate, nil
	}
}

// Issued returns how many keys this Generator has handed out.
func (g *Generator) Issued() int {
	return len(g.issued)
}

// evict deletes every registry entry holding requestPath.
func (g *Generator) evict(ctx context.Context, requestPath string) error {
	rewrites, err := g.registry.FindByRequestPath(ctx, requestPath)
	if err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence,
			"failed to look up url rewrite '%s'", requestPath, err)
	}
	for _, rw := range rewrites {
		if err := g.registry.Delete(ctx, rw); err != nil {
			return exception.NewUploadErrorf(moduleName, exception.KindPersistence,
				"failed to evict url rewrite %d ('%s')", rw.ID, requestPath, err)
		}
		logger.Debugf("Evicted url rewrite %d ('%s', %s #%d).", rw.ID, requestPath, rw.EntityType, rw.EntityID)
	}
	return nil
}
