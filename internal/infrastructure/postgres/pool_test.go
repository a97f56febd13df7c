package postgres_test

import (
	"testing"

	"github.com/jhoicas/Consignacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Consignacion-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig_DesdeCampos(t *testing.T) {
	pc, err := postgres.PoolConfig(config.DBConfig{
		Host: "db.local", Port: 5433, User: "tienda", Password: "p@ss:word",
		DBName: "consignacion", SSLMode: "disable", MaxConns: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss:word", pc.ConnConfig.Password, "la contraseña se escapa en el DSN")
	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, "consignacion-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "5000", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	pc, err := postgres.PoolConfig(config.DBConfig{
		DatabaseURL: "postgres://u:p@remote:5432/otra?sslmode=disable&application_name=worker",
		Host:        "ignorado",
		MaxConns:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, "remote", pc.ConnConfig.Host)
	assert.Equal(t, "otra", pc.ConnConfig.Database)
	assert.Equal(t, "worker", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(1), pc.MinConns, "MinConns no supera MaxConns")
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := postgres.PoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	assert.Error(t, err)
}
