package monitoring

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/storage"
)

const defaultProbeTimeout = 2 * time.Second

// DatabaseCheck pings the database handle backing the simulated backend.
func DatabaseCheck(db *gorm.DB, timeout time.Duration) Check {
	return NewCheck("database", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if db == nil {
			return ProbeResult{Status: StatusDown, Details: "database not configured"}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return ResultFromError("database", err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()
		return ResultFromError("database", sqlDB.PingContext(probeCtx), time.Since(start))
	})
}

// StoreCheck writes, reads back and deletes a probe key in the client storage backend.
func StoreCheck(store storage.Store, timeout time.Duration) Check {
	return NewCheck("storage", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if store == nil {
			return ProbeResult{Status: StatusDown, Details: "storage not configured"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		key := "health:" + uuid.NewString()
		value := []byte("ok")
		if err := store.Set(probeCtx, key, value, time.Minute); err != nil {
			return ResultFromError("storage", err, time.Since(start))
		}
		defer func() { _ = store.Delete(context.Background(), key) }()

		got, ok, err := store.Get(probeCtx, key)
		if err != nil {
			return ResultFromError("storage", err, time.Since(start))
		}
		if !ok || !bytes.Equal(got, value) {
			return ProbeResult{Status: StatusDegraded, Details: "probe value not read back", Duration: time.Since(start)}
		}
		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	})
}

func chooseTimeout(provided time.Duration) time.Duration {
	if provided <= 0 {
		return defaultProbeTimeout
	}
	return provided
}
