package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/service"
	"github.com/garyjia/rendicion/internal/config"
)

func testConfig(t *testing.T, driver string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 3001},
		Database: config.DatabaseConfig{
			Driver: driver,
			Path:   filepath.Join(dir, "rendicion.db"),
		},
		Scanner: config.ScannerConfig{
			Provider:       config.ProviderNone,
			Timeout:        time.Second,
			MaxUploadBytes: 1 << 20,
			OCREnabled:     true,
			ReceiptsDir:    filepath.Join(dir, "comprobantes"),
			PDFDPI:         100,
		},
	}
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	cfg := testConfig(t, config.DriverMemory)
	_, err = NewContainer(cfg, nil)
	assert.Error(t, err)

	cfg.Scanner.Provider = "unknown"
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			c, err := NewContainer(testConfig(t, driver), zap.NewNop())
			require.NoError(t, err)

			require.NoError(t, c.Start(context.Background()))
			assert.True(t, c.Ready())
			assert.Error(t, c.Start(context.Background()))

			for name, err := range c.Health(context.Background()) {
				assert.NoError(t, err, name)
			}

			ctx := context.Background()
			services := c.Services()
			require.NotNil(t, services)

			_, err = services.Expenses.Create(ctx, service.CreateExpenseInput{
				TripNumber:   2001,
				Date:         "05/03/2024",
				Country:      "CHL",
				Amount:       decimal.RequireFromString("1500"),
				Driver:       "Juan Perez",
				TractorPlate: "AB123CD",
			})
			require.NoError(t, err)

			approval, err := services.Approvals.Approve(ctx, 2001, "admin")
			require.NoError(t, err)
			assert.True(t, approval.TotalAmount.Equal(decimal.RequireFromString("1500")))

			require.NoError(t, c.Close())
			assert.False(t, c.Ready())
			assert.Error(t, c.Close())
			assert.Error(t, c.Start(context.Background()))
		})
	}
}

func TestContainer_HealthEndpoint(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Scanner.OCREnabled = false

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	c.Server().Router().ServeHTTP(rec, req)

	// no AI provider and no OCR leaves nothing to read receipts with
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no receipt reader configured")
}

func TestContainer_StartFailsOnBadCatalog(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
	assert.False(t, c.Ready())
}
