package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/sipcourse-backend/pkg/config"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestValidateFSCollectsAllProblems(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101000000_ok.sql":      {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
		"20260101000000_again.sql":   {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"bad-name.sql":               {Data: []byte("-- +goose Up\n")},
		"20260102000000_no_down.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"README.md":                  {Data: []byte("ignored")},
	}

	err := ValidateFS(fsys)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)
}

func TestUpAppliesSchemaAndSeedOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Up(ctx, sqlDB, config.DBDriverSQLite))

	var courses int64
	require.NoError(t, conn.Table("courses").Count(&courses).Error)
	require.EqualValues(t, 6, courses)

	var domains []string
	require.NoError(t, conn.Table("courses").Distinct("domain").Order("domain").Pluck("domain", &domains).Error)
	require.Equal(t, []string{"Finance", "Tech"}, domains)

	version, err := Version(ctx, sqlDB, config.DBDriverSQLite)
	require.NoError(t, err)
	require.EqualValues(t, 20260301090300, version)

	require.NoError(t, MigrateToVersion(ctx, sqlDB, config.DBDriverSQLite, "20260301090200"))
	require.NoError(t, conn.Table("courses").Count(&courses).Error)
	require.EqualValues(t, 0, courses)
}

func TestDialect(t *testing.T) {
	require.Equal(t, "sqlite3", Dialect(config.DBDriverSQLite))
	require.Equal(t, "postgres", Dialect(config.DBDriverPostgres))
	require.Equal(t, "postgres", Dialect(""))
}

func TestShouldAutoMigrate(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want bool
	}{
		{"sqlite always", config.Config{App: config.AppConfig{Env: "prod"}, DB: config.DBConfig{Driver: config.DBDriverSQLite}}, true},
		{"dev with flag", config.Config{App: config.AppConfig{Env: "dev"}, DB: config.DBConfig{Driver: config.DBDriverPostgres}, FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true}}, true},
		{"dev without flag", config.Config{App: config.AppConfig{Env: "dev"}, DB: config.DBConfig{Driver: config.DBDriverPostgres}}, false},
		{"prod postgres", config.Config{App: config.AppConfig{Env: "prod"}, DB: config.DBConfig{Driver: config.DBDriverPostgres}, FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, shouldAutoMigrate(&tc.cfg))
		})
	}
}
