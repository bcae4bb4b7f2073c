package utils

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectSystemInfo(t *testing.T) {
	info := CollectSystemInfo(context.Background())
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Positive(t, info.Goroutines)
	assert.Positive(t, info.CPUCount)
}
