package main

import (
	"context"
	"errors"

	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/internal/service"
	"smart-inventory/pkg/config"

	"go.uber.org/zap"
)

var system = service.Actor{ID: "system", Name: "System"}

// seed creates the roles, the default admin and staff accounts and a default
// supplier when they don't exist yet.
func seed(ctx context.Context, cfg config.SeedConfig, roles repository.RoleRepository, users service.UserService, suppliers service.SupplierService) error {
	if err := roles.SeedDefaults(ctx); err != nil {
		return err
	}

	accounts := []service.CreateUserRequest{
		{Email: cfg.AdminEmail, Password: cfg.AdminPassword, FullName: "System Administrator", Role: model.RoleAdmin},
		{Email: cfg.StaffEmail, Password: cfg.StaffPassword, FullName: "Staff User", Role: model.RoleStaff},
	}
	for i := range accounts {
		req := &accounts[i]
		_, err := users.FindByEmail(ctx, req.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, service.ErrUserNotFound) {
			return err
		}
		if _, err := users.CreateUser(ctx, req, system); err != nil {
			return err
		}
		zap.L().Info("seeded account", zap.String("email", req.Email), zap.String("role", string(req.Role)))
	}

	existing, err := suppliers.ListSuppliers(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		_, err := suppliers.CreateSupplier(ctx, &service.SupplierRequest{
			Name:          "Default Supplier",
			ContactPerson: "N/A",
			Email:         "supplier@inventory.com",
			Phone:         "000-000-0000",
		}, system)
		if err != nil {
			return err
		}
		zap.L().Info("seeded default supplier")
	}
	return nil
}
