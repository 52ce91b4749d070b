package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
	"go.uber.org/zap"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a stored report stays valid.
const cacheTTL = 7 * 24 * time.Hour

// CachedReport returns the report for kind and filter, reusing a stored result
// computed from the same input files over the same window when one is fresh.
func CachedReport(p *Pipeline, kind schema.ReportKind, filter country.Filter, mgr contract.CacheManager) (schema.Series, error) {
	filter, err := country.ParseFilter(string(filter))
	if err != nil {
		return schema.Series{}, err
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetReportStore()
	}
	if store == nil {
		// Fallback to direct computation
		return p.Report(kind, filter)
	}

	key := generateCacheKey(kind, filter, p.Window(), p.Fingerprint())

	// Check for cache hit
	if result, ok := checkCacheHit(store, key); ok {
		contract.Logger().Debug("report cache hit", zap.String("report", string(kind)), zap.String("country", filter.String()))
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(p, kind, filter, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) (schema.Series, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.Series{}, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return schema.Series{}, false
	}

	var result schema.Series
	if err := json.Unmarshal(data, &result); err != nil {
		contract.Logger().Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return schema.Series{}, false
	}
	return result, true
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(p *Pipeline, kind schema.ReportKind, filter country.Filter, store contract.CacheStore, key string) (schema.Series, error) {
	result, err := p.Report(kind, filter)
	if err != nil {
		return schema.Series{}, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		contract.Logger().Warn("cannot encode report for cache", zap.String("report", string(kind)), zap.Error(err))
		return result, nil
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.Logger().Warn("cannot store report in cache", zap.String("report", string(kind)), zap.Error(err))
	}
	return result, nil
}

// generateCacheKey creates a unique key based on report parameters
func generateCacheKey(kind schema.ReportKind, filter country.Filter, w schema.Window, fingerprint string) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%s:%d",
		kind,
		filter,
		w.Start.Format(contract.DateFormat),
		w.End.Format(contract.DateFormat),
		fingerprint,
		currentCacheVersion,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
