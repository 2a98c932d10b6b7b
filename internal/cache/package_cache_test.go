package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abishek1718/package-locker/internal/repository"
)

func pendingDetail(id string) *repository.PackageDetail {
	return &repository.PackageDetail{
		Package: repository.Package{
			ID:     id,
			Pin:    "123456",
			Status: repository.PackagePending,
		},
		ResidentName: "Ada Lovelace",
	}
}

func TestPackageCache_SetAndGet(t *testing.T) {
	c := NewPackageCache()

	c.Set(pendingDetail("pkg-1"))

	got, found := c.Get("pkg-1")
	require.True(t, found)
	assert.Equal(t, "123456", got.Pin)

	// The cache hands out copies, not shared pointers.
	got.Pin = "000000"
	again, _ := c.Get("pkg-1")
	assert.Equal(t, "123456", again.Pin)
}

func TestPackageCache_NonPendingEvicts(t *testing.T) {
	c := NewPackageCache()
	c.Set(pendingDetail("pkg-1"))

	picked := pendingDetail("pkg-1")
	picked.Status = repository.PackagePickedUp
	c.Set(picked)

	_, found := c.Get("pkg-1")
	assert.False(t, found)
}

func TestPackageCache_Delete(t *testing.T) {
	c := NewPackageCache()
	c.Set(pendingDetail("pkg-1"))

	c.Delete("pkg-1")
	_, found := c.Get("pkg-1")
	assert.False(t, found)

	// Deleting a missing entry is a no-op.
	c.Delete("ghost")
}

func TestPackageCache_Load(t *testing.T) {
	c := NewPackageCache()

	picked := pendingDetail("pkg-2")
	picked.Status = repository.PackagePickedUp

	c.Load([]*repository.PackageDetail{pendingDetail("pkg-1"), picked})

	_, found := c.Get("pkg-1")
	assert.True(t, found)
	_, found = c.Get("pkg-2")
	assert.False(t, found)
}
