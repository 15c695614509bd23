package redis

import (
	"os"
	"testing"

	"github.com/IgorGrieder/linkhub/internal/storage"
	"github.com/IgorGrieder/linkhub/internal/storage/storagetest"
	"github.com/google/uuid"
)

// Runs against a real server when LINKHUB_TEST_REDIS_ADDR is set.
func TestClientStore(t *testing.T) {
	addr := os.Getenv("LINKHUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LINKHUB_TEST_REDIS_ADDR not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Store {
		c, err := New(Config{Addr: addr, Prefix: "linkhub-test-" + uuid.NewString()})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = c.Close() })
		return c
	})
}
