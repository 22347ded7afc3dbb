package factory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/matchboard/internal/dependencies/mocks"
	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/services/ranking"
	"github.com/mcoot/matchboard/internal/services/simulation"
	"github.com/mcoot/matchboard/internal/services/users"
	"github.com/mcoot/matchboard/internal/storage"
	"github.com/mcoot/matchboard/internal/storage/memory"
	"github.com/mcoot/matchboard/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App over in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App over the given storage
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	registry := prometheus.NewRegistry()
	cfg := Config{
		UsersConfig:      users.Config{BcryptCost: bcrypt.MinCost},
		RankingConfig:    ranking.DefaultConfig(),
		SimulationConfig: simulation.DefaultConfig(),
	}

	app := newWithDependencies(store, mockClock, mockRandom, metrics.NewCollector(registry), cfg, testutil.NopLogger())
	app.Registry = registry

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
