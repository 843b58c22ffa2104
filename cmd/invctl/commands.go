package main

import (
	"context"
	"fmt"
	"io"

	"smart-inventory/internal/repository"
	"smart-inventory/internal/service"
	"smart-inventory/pkg/config"
	"smart-inventory/pkg/database"
	"smart-inventory/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var operator = service.Actor{ID: "system", Name: "invctl"}

// app bundles the services the commands need.
type app struct {
	users     service.UserService
	policy    service.AccessPolicy
	dashboard service.DashboardService
}

func newApp(db *gorm.DB) *app {
	userRepo := repository.NewUserRepo(db)
	policy := service.NewAccessPolicy(db, userRepo, service.NopPublisher{})
	return &app{
		users:  service.NewUserService(db, userRepo, policy),
		policy: policy,
		dashboard: service.NewDashboardService(
			repository.NewProductRepo(db),
			repository.NewSupplierRepo(db),
			repository.NewMovementRepo(db),
		),
	}
}

// boot loads config and opens the database connection.
func boot() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.AppEnv); err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return newApp(db), nil
}

func (a *app) resetPassword(ctx context.Context, out io.Writer, email, password string) error {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := a.users.ResetPassword(ctx, user.ID, password, operator); err != nil {
		return err
	}
	fmt.Fprintf(out, "Password for %s has been reset\n", user.Email)
	return nil
}

func (a *app) unlock(ctx context.Context, out io.Writer, email string) error {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := a.policy.Unlock(ctx, user.ID, operator); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s unlocked\n", user.Email)
	return nil
}

func (a *app) lowStock(ctx context.Context, out io.Writer) error {
	products, err := a.dashboard.LowStock(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "No products at or below their reorder level")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-30s  %8s  %8s  %12s\n", "ID", "NAME", "QTY", "REORDER", "VALUE")
	for _, p := range products {
		fmt.Fprintf(out, "%-36s  %-30s  %8d  %8d  %12s\n", p.ID, p.Name, p.QuantityInStock, p.ReorderLevel, p.Valuation().StringFixed(2))
	}
	return nil
}

// invctl reset-password
var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password for an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		a, err := boot()
		if err != nil {
			return err
		}
		return a.resetPassword(cmd.Context(), cmd.OutOrStdout(), email, password)
	},
}

// invctl unlock
var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Clear the lockout of an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		a, err := boot()
		if err != nil {
			return err
		}
		return a.unlock(cmd.Context(), cmd.OutOrStdout(), email)
	},
}

// invctl low-stock
var lowStockCmd = &cobra.Command{
	Use:   "low-stock",
	Short: "List products at or below their reorder level",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		return a.lowStock(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	resetPasswordCmd.Flags().String("email", "", "account email")
	resetPasswordCmd.Flags().String("password", "", "new password")
	_ = resetPasswordCmd.MarkFlagRequired("email")
	_ = resetPasswordCmd.MarkFlagRequired("password")

	unlockCmd.Flags().String("email", "", "account email")
	_ = unlockCmd.MarkFlagRequired("email")
}
