package utils

import (
	"community-bot/model"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("rule GR001: %w", model.ErrRuleInactive)
	assert.Contains(t, UserMessage(wrapped), "deactivated")
	assert.Equal(t, "Invalid input: must not be empty", UserMessage(model.Invalid("title", "must not be empty")))
	assert.Contains(t, UserMessage(model.StorageErr("get rule", errors.New("disk I/O"))), "database error")
	assert.NotContains(t, UserMessage(errors.New("disk I/O")), "disk")
	assert.Contains(t, UserMessage(fmt.Errorf("x: %w", model.ErrTicketLimit)), "maximum")
	assert.Equal(t, "Only admins can punish other admins", UserMessage(fmt.Errorf("record: %w", model.Denied("Only admins can punish other admins"))))
}
