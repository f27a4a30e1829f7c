package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTenantCreateRequiresName(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.Tenants.Create(context.Background(), TenantInput{FullName: "   "})
	require.True(t, IsValidation(err))
}

func TestTenantCreateTrimsName(t *testing.T) {
	svc, _ := newTestServices(t)

	tenant, err := svc.Tenants.Create(context.Background(), TenantInput{FullName: "  Ravi Kumar  ", Phone: "9000000002"})
	require.NoError(t, err)
	require.Equal(t, "Ravi Kumar", tenant.FullName)
}

func TestTenantUpdate(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	tenant := seedTenant(t, svc, "Priya Nair")
	updated, err := svc.Tenants.Update(ctx, tenant.ID, TenantInput{
		FullName: "Priya Nair",
		Phone:    "9111111111",
		Email:    "priya@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "9111111111", updated.Phone)
	require.Equal(t, "priya@example.com", updated.Email)
}

func TestTenantListSearchesNameAndPhone(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	seedTenant(t, svc, "Asha Verma")
	seedTenant(t, svc, "Amit Shah")

	byName, err := svc.Tenants.List(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "Asha Verma", byName[0].FullName)

	all, err := svc.Tenants.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestTenantDeleteBlockedByActiveLease(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	lease, _ := seedActiveLease(t, svc, db)

	err := svc.Tenants.Delete(ctx, lease.TenantID)
	require.True(t, IsValidation(err))

	_, err = svc.Leases.End(ctx, lease.ID, day(t, "2025-02-10"))
	require.NoError(t, err)
	require.NoError(t, svc.Tenants.Delete(ctx, lease.TenantID))
}
