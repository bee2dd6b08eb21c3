// Package storage is the key-value persistence layer. Every domain collection
// lives under one key as a single JSON document, read and written wholesale.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Logical collection keys
const (
	KeyProducts             = "products"
	KeyCategories           = "categories"
	KeySales                = "sales"
	KeyInstallmentContracts = "installment-contracts"
	KeyTransactions         = "transactions"
	KeyUsers                = "users"
	KeySettings             = "settings"
	KeyLastInvoiceNumber    = "last-invoice-number"
	KeyAuthSession          = "auth-session"
)

var ErrKeyNotFound = errors.New("storage: key not found")

// Store is a get/set/remove key-value backend
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage: empty key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
