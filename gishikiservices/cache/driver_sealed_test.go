package cache_test

import (
	"testing"
	"time"

	"github.com/lunagic/gishiki/gishikiservices/cache"
	"github.com/lunagic/gishiki/gishikiservices/vault"
	"gotest.tools/v3/assert"
)

func TestDriverSealed(t *testing.T) {
	t.Parallel()

	memory, err := cache.NewDriverMemory()
	assert.NilError(t, err)

	v, err := vault.New([]byte("secret_key_secret_key_secret_key"))
	assert.NilError(t, err)

	driver := cache.NewDriverSealed(memory, v)

	testCase(t, driver)

	{ // The wrapped driver only sees sealed values
		assert.NilError(t, driver.Set(t.Context(), "sealed", "plain", time.Minute))

		raw, err := memory.Get(t.Context(), "sealed")
		assert.NilError(t, err)
		assert.Assert(t, raw != "plain")

		value, err := driver.Get(t.Context(), "sealed")
		assert.NilError(t, err)
		assert.Equal(t, value, "plain")
	}
}
