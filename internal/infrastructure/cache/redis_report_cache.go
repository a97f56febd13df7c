// Package cache implementa la caché de reportes financieros de meses cerrados.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
)

const keyPrefix = "consignacion:report"

// MonthlyKey clave del estado de resultados de un mes.
func MonthlyKey(year, month int) string {
	return fmt.Sprintf("%s:monthly:%04d-%02d", keyPrefix, year, month)
}

// SalesByCategoryKey clave del reporte de ventas por categoría de un mes.
func SalesByCategoryKey(year, month int) string {
	return fmt.Sprintf("%s:categories:%04d-%02d", keyPrefix, year, month)
}

type RedisReportCache struct {
	client *redis.Client
}

func NewRedisReportCache(addr string, password string, db int) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) GetMonthly(ctx context.Context, year, month int) (*dto.MonthlyReportDTO, bool, error) {
	var report dto.MonthlyReportDTO
	ok, err := c.get(ctx, MonthlyKey(year, month), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *RedisReportCache) SetMonthly(ctx context.Context, report *dto.MonthlyReportDTO, ttl time.Duration) error {
	if report == nil {
		return nil
	}
	return c.set(ctx, MonthlyKey(report.Year, report.Month), report, ttl)
}

func (c *RedisReportCache) GetSalesByCategory(ctx context.Context, year, month int) (*dto.SalesByCategoryDTO, bool, error) {
	var report dto.SalesByCategoryDTO
	ok, err := c.get(ctx, SalesByCategoryKey(year, month), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *RedisReportCache) SetSalesByCategory(ctx context.Context, report *dto.SalesByCategoryDTO, ttl time.Duration) error {
	if report == nil {
		return nil
	}
	return c.set(ctx, SalesByCategoryKey(report.Year, report.Month), report, ttl)
}

// Invalidate borra los dos reportes del mes.
func (c *RedisReportCache) Invalidate(ctx context.Context, year, month int) error {
	if err := c.client.Del(ctx, MonthlyKey(year, month), SalesByCategoryKey(year, month)).Err(); err != nil {
		return fmt.Errorf("redis del %04d-%02d: %w", year, month, err)
	}
	return nil
}

func (c *RedisReportCache) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisReportCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
