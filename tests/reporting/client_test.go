package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/config"
	"github.com/wanderly/agency-api/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := reporting.NewClient(&config.ReportingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.False(t, client.IsEnabled())
	assert.NoError(t, client.Close())
}

func TestClient_HealthCheck_Disabled(t *testing.T) {
	client, err := reporting.NewClient(&config.ReportingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	status, err := client.HealthCheck(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "disabled", status["status"])
}

func TestClient_Queries_Disabled(t *testing.T) {
	client, err := reporting.NewClient(&config.ReportingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	agencyID := uuid.New()
	from := time.Now().AddDate(0, -1, 0)
	to := time.Now()

	_, err = client.RecognizedRevenue(context.Background(), agencyID, from, to)
	assert.Error(t, err)

	_, err = client.OutstandingReceivables(context.Background(), agencyID)
	assert.Error(t, err)
}
