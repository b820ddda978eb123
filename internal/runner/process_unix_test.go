//go:build unix

package runner

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ForwardsInterruptToProcessGroup(t *testing.T) {
	r := New(Config{})
	sigChan := make(chan os.Signal, 1)

	go func() {
		time.Sleep(200 * time.Millisecond)
		sigChan <- os.Interrupt
	}()

	start := time.Now()
	result, err := r.run(context.Background(), sigChan, "sh", []string{"-c", "sleep 30"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "interrupted by interrupt")
	assert.NotZero(t, result.ExitCode)
	assert.Less(t, time.Since(start), 10*time.Second)
}
