package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/logger"
	"github.com/mkovardin/webshop/internal/models"
	"github.com/mkovardin/webshop/internal/repository"
	"github.com/mkovardin/webshop/internal/service/auth"
	"github.com/mkovardin/webshop/internal/service/product"
)

const seedAdminEmail = "admin@webshop.local"

// seed creates the admin account and a minimal catalog so a fresh
// install is browsable. Safe to run repeatedly: the admin is kept as is
// and products are only created into an empty catalog.
func seed(ctx context.Context, l logger.Logger, storage repository.Storage, products *product.ProductService) error {
	if err := seedAdmin(ctx, l, storage); err != nil {
		return err
	}
	return seedCatalog(ctx, l, products)
}

func seedAdmin(ctx context.Context, l logger.Logger, storage repository.Storage) error {
	password, err := randomPassword()
	if err != nil {
		return fmt.Errorf("can't generate admin password. Err: %w", err)
	}

	hash, err := auth.BcryptHasher{}.Hash(password)
	if err != nil {
		return fmt.Errorf("can't hash admin password. Err: %w", err)
	}

	_, err = storage.User().CreateUser(ctx, seedAdminEmail, hash, []string{models.RoleUser, models.RoleAdmin})
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		l.Debug("Admin account already exists, skipping", "email", seedAdminEmail)
		return nil
	case err != nil:
		return fmt.Errorf("can't create admin account. Err: %w", err)
	}

	// Printed once on first start, there is no other way to recover it
	l.Info("Admin account created", "email", seedAdminEmail, "password", password)
	return nil
}

func seedCatalog(ctx context.Context, l logger.Logger, products *product.ProductService) error {
	existing, err := products.List(ctx, "")
	if err != nil {
		return fmt.Errorf("can't list products. Err: %w", err)
	}
	if len(existing) > 0 {
		l.Debug("Catalog is not empty, skipping seed")
		return nil
	}

	samples := []product.ProductParams{
		{
			Name:        "Mechanical keyboard",
			Description: "Tenkeyless board with hot swappable switches",
			Category:    "peripherals",
			Price:       decimal.RequireFromString("89.90"),
		},
		{
			Name:        "USB-C dock",
			Description: "Dual display dock with 96W passthrough charging",
			Category:    "peripherals",
			Price:       decimal.RequireFromString("149.00"),
		},
		{
			Name:        "Desk mat",
			Description: "900x400 mm stitched edge desk mat",
			Category:    "accessories",
			Price:       decimal.RequireFromString("24.50"),
		},
	}

	for _, params := range samples {
		if _, err := products.Create(ctx, params); err != nil {
			return fmt.Errorf("can't create sample product %q. Err: %w", params.Name, err)
		}
	}

	l.Info("Catalog seeded", "products", len(samples))
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
