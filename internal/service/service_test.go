package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/internal/ws"
	"smart-inventory/pkg/config"
	"smart-inventory/pkg/database"
	"smart-inventory/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testActor = Actor{ID: "tester-id", Name: "Tester", Email: "tester@example.com"}

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	products  repository.ProductRepository
	movements repository.MovementRepository
	suppliers repository.SupplierRepository
	users     repository.UserRepository
	events    *recorder

	inventory InventoryService
	policy    AccessPolicy
	supplier  SupplierService
	user      UserService
	auth      AuthService
	dashboard DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{
		Driver:   "sqlite",
		URL:      filepath.Join(t.TempDir(), "service.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	ctx := context.Background()
	require.NoError(t, repository.NewRoleRepo(db).SeedDefaults(ctx))

	f := &fixture{
		ctx:       ctx,
		db:        db,
		products:  repository.NewProductRepo(db),
		movements: repository.NewMovementRepo(db),
		suppliers: repository.NewSupplierRepo(db),
		users:     repository.NewUserRepo(db),
		events:    &recorder{},
	}
	f.inventory = NewInventoryService(db, f.products, f.movements, f.suppliers, f.events)
	f.policy = NewAccessPolicy(db, f.users, f.events)
	f.supplier = NewSupplierService(db, f.suppliers, f.products)
	f.user = NewUserService(db, f.users, f.policy)
	f.auth = NewAuthService(f.users, jwt.NewManager("test-secret", time.Hour, "test"), config.LockoutConfig{
		MaxFailedAccess: 5,
		Duration:        5 * time.Minute,
	})
	f.dashboard = NewDashboardService(f.products, f.suppliers, f.movements)
	return f
}

func (f *fixture) supplierRow(t *testing.T) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Name: "Acme", ContactPerson: "Ann", Email: "ann@acme.test", Phone: "555"}
	require.NoError(t, f.suppliers.Create(f.ctx, s))
	return s
}

func (f *fixture) product(t *testing.T, qty, reorder int) *model.Product {
	t.Helper()
	p, err := f.inventory.CreateProduct(f.ctx, &ProductRequest{
		Name:            "Widget " + uuid.NewString()[:8],
		Category:        "Parts",
		SupplierID:      f.supplierRow(t).ID,
		UnitPrice:       decimal.RequireFromString("1.25"),
		QuantityInStock: qty,
		ReorderLevel:    reorder,
	}, testActor)
	require.NoError(t, err)
	return p
}

func (f *fixture) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.FindByID(f.ctx, id)
	require.NoError(t, err)
	return p.QuantityInStock
}

func (f *fixture) account(t *testing.T, email string, role model.RoleName) *model.User {
	t.Helper()
	u, err := f.user.CreateUser(f.ctx, &CreateUserRequest{
		Email:    email,
		Password: "Secret123!",
		FullName: "User " + email,
		Role:     role,
	}, testActor)
	require.NoError(t, err)
	return u
}

func (f *fixture) roles(t *testing.T, id uuid.UUID) []model.RoleName {
	t.Helper()
	u, err := f.users.FindByID(f.ctx, id)
	require.NoError(t, err)
	return u.RoleNames()
}
