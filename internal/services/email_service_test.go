package services

import (
	"testing"

	"github.com/solterra/ventas-api/internal/config"
	"github.com/solterra/ventas-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestEmailService_checkEmailPreconditions(t *testing.T) {
	logger.Setup("test")

	// Notifications disabled: skip silently
	cfg := &config.Config{
		EnableEmailNotifications: false,
	}
	service := NewEmailService(cfg)

	ok, err := service.checkEmailPreconditions("client@example.com", "test operation")
	assert.False(t, ok, "Should return false when notifications are disabled")
	assert.Nil(t, err, "Should not return error when notifications are disabled")

	// Properly configured
	cfg = &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "test_key",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)

	ok, err = service.checkEmailPreconditions("client@example.com", "test operation")
	assert.True(t, ok, "Should return true when properly configured")
	assert.Nil(t, err, "Should not return error when properly configured")

	// Missing API key
	cfg = &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)

	ok, err = service.checkEmailPreconditions("client@example.com", "test operation")
	assert.False(t, ok, "Should return false when config is missing")
	assert.Error(t, err, "Should return error when config is missing")
	assert.Contains(t, err.Error(), "RESEND_API_KEY is not set")

	// Empty recipient address
	cfg = &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "test_key",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)

	ok, err = service.checkEmailPreconditions("", "test operation")
	assert.False(t, ok, "Should return false when email is empty")
	assert.Error(t, err, "Should return error when email is empty")
	assert.Equal(t, "email address is empty", err.Error())
}
