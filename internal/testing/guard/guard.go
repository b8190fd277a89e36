package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("LEDGERDASH_TEST_MODE") == "" {
			_ = os.Setenv("LEDGERDASH_TEST_MODE", "1")
		}
	})
}
