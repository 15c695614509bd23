package memory

import (
	"testing"

	"github.com/IgorGrieder/linkhub/internal/storage"
	"github.com/IgorGrieder/linkhub/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.Store { return New() })
}
