package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/service"
)

func newTestRepository(t *testing.T) (*config.Config, *repository.Repository) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.Driver = repository.DriverSQLite
	cfg.Database.DSN = filepath.Join(t.TempDir(), "seed.db")
	cfg.Database.ConnectTimeout = 5
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 10
	cfg.InitialAdmin.Username = "admin"
	cfg.InitialAdmin.Password = "admin-password"
	cfg.InitialAdmin.FullName = "管理员"
	cfg.InitialAdmin.Email = "admin@example.com"

	dbpool, err := repository.OpenDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbpool.Close() })

	repo := repository.NewRepository(cfg, dbpool)
	require.NoError(t, repo.Migrate(context.Background()))
	return cfg, repo
}

func TestEnsureInitialAdmin(t *testing.T) {
	cfg, repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, EnsureInitialAdmin(ctx, repo, cfg))
	// 第二次启动不报错
	require.NoError(t, EnsureInitialAdmin(ctx, repo, cfg))

	admin, err := repo.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdministrator, admin.Role)

	isAdmin, err := repo.IsAdministrator(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSeedSchedules(t *testing.T) {
	cfg, repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, EnsureInitialAdmin(ctx, repo, cfg))
	seeded := SeedUsers(ctx, repo, 3, "password", "example.com")
	require.Positive(t, seeded)

	svc := service.NewScheduleService(repo, repo, nil)

	// 2025 年 2 月有 4 个业务周
	cnt, err := SeedSchedules(ctx, repo, svc, 2025, time.February)
	require.NoError(t, err)
	assert.Equal(t, seeded*4, cnt)

	// 重复执行时跳过已有的周
	cnt, err = SeedSchedules(ctx, repo, svc, 2025, time.February)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	schedules, err := svc.List(ctx, domain.ScheduleFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	assert.Len(t, schedules, seeded*4)
}
