package cache

import (
	"context"
	"time"

	"github.com/lunagic/gishiki/gishikiservices/vault"
)

// NewDriverSealed encrypts values before they reach driver. Keys stay in
// the clear.
func NewDriverSealed(driver Driver, v vault.Vault) Driver {
	return &driverSealed{
		driver: driver,
		vault:  v,
	}
}

type driverSealed struct {
	driver Driver
	vault  vault.Vault
}

func (driver *driverSealed) Delete(ctx context.Context, key string) error {
	return driver.driver.Delete(ctx, key)
}

func (driver *driverSealed) Get(ctx context.Context, key string) (string, error) {
	sealed, err := driver.driver.Get(ctx, key)
	if err != nil {
		return "", err
	}

	value, err := driver.vault.Decrypt([]byte(sealed))
	if err != nil {
		return "", err
	}

	return string(value), nil
}

func (driver *driverSealed) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	sealed, err := driver.vault.Encrypt([]byte(value))
	if err != nil {
		return err
	}

	return driver.driver.Set(ctx, key, string(sealed), duration)
}
