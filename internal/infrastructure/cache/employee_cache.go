package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"employee-role-api/internal/domain/entity"
	domainRepo "employee-role-api/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const employeeKeyPrefix = "employee:"

// RedisEmployeeCache stores employees as JSON under employee:<id> with a TTL.
type RedisEmployeeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEmployeeCache(client *redis.Client, ttl time.Duration) domainRepo.EmployeeCache {
	return &RedisEmployeeCache{client: client, ttl: ttl}
}

func (c *RedisEmployeeCache) Get(ctx context.Context, id uint) (*entity.Employee, bool, error) {
	raw, err := c.client.Get(ctx, employeeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get employee %d: %w", id, err)
	}

	var employee entity.Employee
	if err := json.Unmarshal(raw, &employee); err != nil {
		// Undecodable entries are dropped and treated as a miss.
		_ = c.client.Del(ctx, employeeKey(id)).Err()
		return nil, false, nil
	}
	return &employee, true, nil
}

func (c *RedisEmployeeCache) Set(ctx context.Context, employee *entity.Employee) error {
	raw, err := json.Marshal(employee)
	if err != nil {
		return fmt.Errorf("encode employee %d: %w", employee.ID, err)
	}
	if err := c.client.Set(ctx, employeeKey(employee.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set employee %d: %w", employee.ID, err)
	}
	return nil
}

func (c *RedisEmployeeCache) Delete(ctx context.Context, id uint) error {
	if err := c.client.Del(ctx, employeeKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del employee %d: %w", id, err)
	}
	return nil
}

func employeeKey(id uint) string {
	return fmt.Sprintf("%s%d", employeeKeyPrefix, id)
}

type memoryEntry struct {
	employee  entity.Employee
	expiresAt time.Time
}

// MemoryEmployeeCache is a process-local, size-bounded TTL cache used when
// Redis is disabled and in tests.
type MemoryEmployeeCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[uint]memoryEntry
	now        func() time.Time
}

func NewMemoryEmployeeCache(ttl time.Duration, maxEntries int) *MemoryEmployeeCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryEmployeeCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[uint]memoryEntry),
		now:        time.Now,
	}
}

func (c *MemoryEmployeeCache) Get(_ context.Context, id uint) (*entity.Employee, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, id)
		return nil, false, nil
	}
	return cloneEmployee(&entry.employee), true, nil
}

func (c *MemoryEmployeeCache) Set(_ context.Context, employee *entity.Employee) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[employee.ID]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[employee.ID] = memoryEntry{
		employee:  *cloneEmployee(employee),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryEmployeeCache) Delete(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryEmployeeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries, or the entry closest to expiry when
// none have expired.
func (c *MemoryEmployeeCache) evictLocked() {
	now := c.now()
	var oldestID uint
	var oldest time.Time
	first := true
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
			continue
		}
		if first || entry.expiresAt.Before(oldest) {
			oldestID, oldest, first = id, entry.expiresAt, false
		}
	}
	if len(c.entries) >= c.maxEntries && !first {
		delete(c.entries, oldestID)
	}
}

func cloneEmployee(employee *entity.Employee) *entity.Employee {
	clone := *employee
	if employee.Roles != nil {
		clone.Roles = append([]entity.Role(nil), employee.Roles...)
	}
	return &clone
}
