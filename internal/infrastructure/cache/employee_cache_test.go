package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"employee-role-api/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func sampleEmployee(id uint) *entity.Employee {
	return &entity.Employee{
		ID:           id,
		Name:         "TESTENGG",
		Salary:       1000,
		Department:   "DEVELOPMENT",
		PasswordHash: "$2a$04$hash",
		Roles:        []entity.Role{{ID: 1, Name: entity.RoleEngineer}},
	}
}

func TestMemoryEmployeeCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryEmployeeCache(time.Minute, 10)

	_, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, sampleEmployee(1)))

	got, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleEmployee(1), got)

	require.NoError(t, c.Delete(ctx, 1))
	_, found, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryEmployeeCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryEmployeeCache(time.Minute, 10)

	original := sampleEmployee(1)
	require.NoError(t, c.Set(ctx, original))
	original.Roles[0].Name = "MUTATED"

	got, _, err := c.Get(ctx, 1)
	require.NoError(t, err)
	got.Salary = 1

	again, _, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEngineer, again.Roles[0].Name)
	assert.Equal(t, 1000, again.Salary)
}

func TestMemoryEmployeeCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryEmployeeCache(time.Minute, 10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, sampleEmployee(1)))

	now = now.Add(2 * time.Minute)
	_, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryEmployeeCache_BoundedSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryEmployeeCache(time.Minute, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, sampleEmployee(1)))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, sampleEmployee(2)))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, sampleEmployee(3)))

	assert.Equal(t, 2, c.Len())
	_, found, _ := c.Get(ctx, 1)
	assert.False(t, found, "entry closest to expiry should be evicted")
	_, found, _ = c.Get(ctx, 3)
	assert.True(t, found)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisEmployeeCache_RoundTrip(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	c := NewRedisEmployeeCache(client, time.Minute)

	_, found, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)

	employee := sampleEmployee(7)
	require.NoError(t, c.Set(ctx, employee))

	got, found, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, employee.Name, got.Name)
	assert.Equal(t, employee.PasswordHash, got.PasswordHash)
	assert.Equal(t, employee.Roles, got.Roles)

	ttl, err := client.TTL(ctx, "employee:7").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Delete(ctx, 7))
	_, found, err = c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisEmployeeCache_CorruptEntryIsMiss(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	c := NewRedisEmployeeCache(client, time.Minute)

	require.NoError(t, client.Set(ctx, "employee:9", "not-json", time.Minute).Err())

	_, found, err := c.Get(ctx, 9)
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := client.Exists(ctx, "employee:9").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
