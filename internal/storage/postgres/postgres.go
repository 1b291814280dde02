// Package postgres implements the trade journal on PostgreSQL via GORM.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/solana-dashboard/internal/storage"
	"github.com/rovshanmuradov/solana-dashboard/internal/storage/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger adapts zap to GORM's logger.Interface.
type gormLogger struct {
	zapLogger *zap.Logger
	logLevel  logger.LogLevel
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger: zapLogger,
		logLevel:  logger.Warn,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil {
		l.zapLogger.Error("trace", append(fields, zap.Error(err))...)
		return
	}

	if l.logLevel >= logger.Info {
		l.zapLogger.Info("trace", fields...)
	}
}

type postgresJournal struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewJournal connects to PostgreSQL and returns a journal backed by it.
func NewJournal(dsn string, zapLogger *zap.Logger) (storage.Journal, error) {
	gormLogger := newGormLogger(zapLogger.Named("gorm"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresJournal{
		db:     db,
		logger: zapLogger,
	}, nil
}

// RunMigrations applies the schema with GORM AutoMigrate, serialized by a
// Postgres advisory lock so concurrent dashboard instances don't race.
func (p *postgresJournal) RunMigrations() error {
	var lockObtained bool
	err := p.db.Raw("SELECT pg_try_advisory_lock(214)").Scan(&lockObtained).Error
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(214)")

	err = p.db.AutoMigrate(
		&models.TradeRecord{},
		&models.PositionArchive{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (p *postgresJournal) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	return p.db.WithContext(ctx).Create(trade).Error
}

// ArchivePosition upserts on position_id: a late settlement event after
// close updates the stored final state instead of failing.
func (p *postgresJournal) ArchivePosition(ctx context.Context, archive *models.PositionArchive) error {
	existing := &models.PositionArchive{}
	err := p.db.WithContext(ctx).Where("position_id = ?", archive.PositionID).First(existing).Error
	if err == gorm.ErrRecordNotFound {
		return p.db.WithContext(ctx).Create(archive).Error
	}
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"status":       archive.Status,
		"realized_pnl": archive.RealizedPnL,
		"close_reason": archive.CloseReason,
		"closed_at":    archive.ClosedAt,
	}).Error
}

func (p *postgresJournal) ListTrades(ctx context.Context, tokenMint string, limit, offset int) ([]*models.TradeRecord, error) {
	var trades []*models.TradeRecord
	err := p.db.WithContext(ctx).
		Where("token_mint = ?", tokenMint).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&trades).Error
	return trades, err
}

func (p *postgresJournal) GetArchive(ctx context.Context, positionID string) (*models.PositionArchive, error) {
	var archive models.PositionArchive
	err := p.db.WithContext(ctx).Where("position_id = ?", positionID).First(&archive).Error
	if err != nil {
		return nil, err
	}
	return &archive, nil
}

func (p *postgresJournal) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
