package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert registration: %w", &pq.Error{Code: "23505", Constraint: "quiz_registrations_email_key"})

	constraint, ok := UniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "quiz_registrations_email_key", constraint)

	_, ok = UniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	var missing []string
	for base := range ups {
		if !downs[base] {
			missing = append(missing, base)
		}
	}
	sort.Strings(missing)
	assert.Empty(t, missing)
	assert.Len(t, ups, 3)

	_, err = embeddedSource()
	require.NoError(t, err)
}

func TestPingUntilReadyRetriesTransientFailures(t *testing.T) {
	calls := 0
	ping := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	require.NoError(t, pingUntilReady(context.Background(), ping, 10*time.Second))
	assert.Equal(t, 3, calls)
}

func TestPingUntilReadySingleAttemptWithoutWait(t *testing.T) {
	calls := 0
	ping := func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	}

	require.Error(t, pingUntilReady(context.Background(), ping, 0))
	assert.Equal(t, 1, calls)
}

func TestPingUntilReadyStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pingUntilReady(ctx, func(context.Context) error { return errors.New("connection refused") }, time.Minute)
	require.Error(t, err)
}
