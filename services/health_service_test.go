package services

import (
	"context"
	"errors"
	"testing"

	"github.com/NomadCrew/feedback-backend/internal/store/mocks"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthService_CheckHealth(t *testing.T) {
	tests := []struct {
		name           string
		storeErr       error
		withRedis      bool
		redisErr       error
		expectedStatus types.HealthStatus
		expectedComps  map[string]types.HealthStatus
	}{
		{
			name:           "store up without redis",
			expectedStatus: types.HealthStatusUp,
			expectedComps:  map[string]types.HealthStatus{"storage": types.HealthStatusUp},
		},
		{
			name:           "store and redis up",
			withRedis:      true,
			expectedStatus: types.HealthStatusUp,
			expectedComps: map[string]types.HealthStatus{
				"storage": types.HealthStatusUp,
				"redis":   types.HealthStatusUp,
			},
		},
		{
			name:           "redis down degrades",
			withRedis:      true,
			redisErr:       errors.New("connection refused"),
			expectedStatus: types.HealthStatusDegraded,
			expectedComps: map[string]types.HealthStatus{
				"storage": types.HealthStatusUp,
				"redis":   types.HealthStatusDown,
			},
		},
		{
			name:           "store down",
			storeErr:       errors.New("permission denied"),
			withRedis:      true,
			expectedStatus: types.HealthStatusDown,
			expectedComps: map[string]types.HealthStatus{
				"storage": types.HealthStatusDown,
				"redis":   types.HealthStatusUp,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(mocks.FeedbackStore)
			st.On("Ping", mock.Anything).Return(tt.storeErr)

			var service *HealthService
			var redisMock redismock.ClientMock
			if tt.withRedis {
				client, rm := redismock.NewClientMock()
				redisMock = rm
				if tt.redisErr != nil {
					redisMock.ExpectPing().SetErr(tt.redisErr)
				} else {
					redisMock.ExpectPing().SetVal("PONG")
				}
				service = NewHealthService(st, "file", client, "1.0.0")
			} else {
				service = NewHealthService(st, "file", nil, "1.0.0")
			}

			health := service.CheckHealth(context.Background())

			assert.Equal(t, tt.expectedStatus, health.Status)
			assert.Equal(t, "1.0.0", health.Version)
			assert.Equal(t, "file", health.Backend)
			assert.NotEmpty(t, health.Timestamp)
			assert.NotEmpty(t, health.Uptime)
			assert.Len(t, health.Components, len(tt.expectedComps))
			for name, status := range tt.expectedComps {
				assert.Equal(t, status, health.Components[name].Status, name)
			}

			st.AssertExpectations(t)
			if redisMock != nil {
				assert.NoError(t, redisMock.ExpectationsWereMet())
			}
		})
	}
}
