package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierLifecycle(t *testing.T) {
	f := newFixture(t)

	s, err := f.supplier.CreateSupplier(f.ctx, &SupplierRequest{
		Name: "Globex", ContactPerson: "Hank", Email: "hank@globex.test", Phone: "123",
	}, testActor)
	require.NoError(t, err)

	s, err = f.supplier.UpdateSupplier(f.ctx, s.ID, &SupplierRequest{
		Name: "Globex Corp", ContactPerson: "Hank", Email: "hank@globex.test", Phone: "456",
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Globex Corp", s.Name)

	list, err := f.supplier.ListSuppliers(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.supplier.DeleteSupplier(f.ctx, s.ID, testActor))
	_, err = f.supplier.GetSupplier(f.ctx, s.ID)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestSupplierValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.supplier.CreateSupplier(f.ctx, &SupplierRequest{Name: "NoEmail", ContactPerson: "X", Phone: "1"}, testActor)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.supplier.UpdateSupplier(f.ctx, uuid.New(), &SupplierRequest{
		Name: "Ghost", ContactPerson: "X", Email: "x@ghost.test", Phone: "1",
	}, testActor)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestDeleteSupplierWithProductsConflicts(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 0, 0)

	err := f.supplier.DeleteSupplier(f.ctx, p.SupplierID, testActor)
	assert.ErrorIs(t, err, ErrSupplierHasProducts)
	assert.Equal(t, KindConflict, KindOf(err))

	require.NoError(t, f.inventory.DeleteProduct(f.ctx, p.ID, testActor))
	assert.NoError(t, f.supplier.DeleteSupplier(f.ctx, p.SupplierID, testActor))

	assert.ErrorIs(t, f.supplier.DeleteSupplier(f.ctx, uuid.New(), testActor), ErrSupplierNotFound)
}
