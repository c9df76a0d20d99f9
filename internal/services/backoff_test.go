package services_test

import (
	"math"
	"testing"
	"time"

	"wfmuser/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestBackoffPolicy_Delay(t *testing.T) {
	p := services.DefaultBackoff()

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 500*time.Millisecond, p.Delay(1))
	assert.Equal(t, 1500*time.Millisecond, p.Delay(2))
	assert.Equal(t, 3500*time.Millisecond, p.Delay(3))
	assert.Equal(t, 7500*time.Millisecond, p.Delay(4))
	assert.Equal(t, time.Duration(0), p.Delay(-1))
}

func TestBackoffPolicy_Uncapped(t *testing.T) {
	p := services.DefaultBackoff()

	assert.Equal(t, time.Duration(1023)*services.DefaultBaseDelay, p.Delay(10))
	assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(40))
	assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(1000))
}

func TestBackoffPolicy_MaxDelay(t *testing.T) {
	p := services.BackoffPolicy{BaseDelay: services.DefaultBaseDelay, MaxDelay: 2 * time.Second}

	assert.Equal(t, 1500*time.Millisecond, p.Delay(2))
	assert.Equal(t, 2*time.Second, p.Delay(3))
	assert.Equal(t, 2*time.Second, p.Delay(100))
}
