package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
	"github.com/samirrijal/missionsketch/internal/pkg/metrics"
)

const defaultExportTTL = 10 * time.Minute

type cachedExporter struct {
	inner     Exporter
	cache     ports.CacheService
	missionID string
	ttl       time.Duration
}

// NewCachedExporter wraps inner with a read-through cache keyed by mission,
// format and route revision. A route mutation changes the revision, so stale
// entries are never served.
func NewCachedExporter(inner Exporter, cache ports.CacheService, missionID string, ttl time.Duration) Exporter {
	if ttl <= 0 {
		ttl = defaultExportTTL
	}
	return &cachedExporter{inner: inner, cache: cache, missionID: missionID, ttl: ttl}
}

// ExportCacheKey returns the cache key of a rendered export.
func ExportCacheKey(missionID, format string, revision uint64) string {
	return fmt.Sprintf("export:%s:%s:%d", missionID, format, revision)
}

func (e *cachedExporter) Format() string { return e.inner.Format() }

func (e *cachedExporter) Export(ctx context.Context, route *domain.Route) (domain.ExportFile, error) {
	key := ExportCacheKey(e.missionID, e.inner.Format(), route.Revision())
	if data, err := e.cache.Get(ctx, key); err == nil {
		var file domain.ExportFile
		if err := json.Unmarshal(data, &file); err == nil {
			metrics.CacheHits.WithLabelValues("export").Inc()
			return file, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("export").Inc()

	file, err := e.inner.Export(ctx, route)
	if err != nil {
		return domain.ExportFile{}, err
	}

	if data, err := json.Marshal(file); err == nil {
		if err := e.cache.Set(ctx, key, data, int(e.ttl.Seconds())); err != nil {
			slog.Debug("cache export", "key", key, "error", err)
		}
	}
	return file, nil
}

type archivingDelivery struct {
	inner     ports.FileDelivery
	archiver  ports.ExportArchiver
	missionID string
}

// NewArchivingDelivery records every successfully delivered file with
// archiver. Archive failures are logged and never fail the delivery.
func NewArchivingDelivery(inner ports.FileDelivery, archiver ports.ExportArchiver, missionID string) ports.FileDelivery {
	return &archivingDelivery{inner: inner, archiver: archiver, missionID: missionID}
}

func (d *archivingDelivery) Deliver(ctx context.Context, file domain.ExportFile) error {
	if d.inner != nil {
		if err := d.inner.Deliver(ctx, file); err != nil {
			return err
		}
	}
	if err := d.archiver.Archive(ctx, d.missionID, file); err != nil {
		slog.Warn("archive export", "mission", d.missionID, "file", file.Name, "error", err)
	}
	return nil
}
