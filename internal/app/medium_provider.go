package app

import (
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/survey-backend/internal/data/db"
	"github.com/yungbote/survey-backend/internal/data/docstore"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

type MediumBootstrapErrorCode string

const (
	MediumBootstrapErrorInvalidMedium MediumBootstrapErrorCode = "invalid_medium"
	MediumBootstrapErrorMissingClient MediumBootstrapErrorCode = "missing_client"
	MediumBootstrapErrorConnectFailed MediumBootstrapErrorCode = "connect_failed"
	MediumBootstrapErrorMigrateFailed MediumBootstrapErrorCode = "migrate_failed"
)

type MediumBootstrapError struct {
	Code   MediumBootstrapErrorCode
	Medium Medium
	Cause  error
}

func (e *MediumBootstrapError) Error() string {
	if e == nil {
		return "survey medium bootstrap failed"
	}
	return fmt.Sprintf("survey medium bootstrap failed (code=%s medium=%q): %v", e.Code, e.Medium, e.Cause)
}

func (e *MediumBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

var (
	openSQLite   = db.NewSQLiteService
	openPostgres = db.NewPostgresService
)

// resolveMedium opens the configured durable medium. rdb is required for, and consumed by,
// the redis medium: closing the medium closes the client.
func resolveMedium(log *logger.Logger, cfg Config, rdb *goredis.Client) (docstore.Medium, error) {
	medium := cfg.Survey.Medium
	log.Info("Selecting survey medium", "medium", medium)

	var (
		m   docstore.Medium
		err error
	)
	switch medium {
	case MediumFile:
		m = docstore.NewFileMedium(cfg.Survey.DataFile, log)
	case MediumSQLite:
		svc, openErr := openSQLite(cfg.Survey.SQLitePath, log)
		if openErr != nil {
			err = &MediumBootstrapError{Code: MediumBootstrapErrorConnectFailed, Medium: medium, Cause: openErr}
			break
		}
		m, err = gormMedium(svc.DB(), cfg, log)
	case MediumPostgres:
		svc, openErr := openPostgres(cfg.Postgres, log)
		if openErr != nil {
			err = &MediumBootstrapError{Code: MediumBootstrapErrorConnectFailed, Medium: medium, Cause: openErr}
			break
		}
		m, err = gormMedium(svc.DB(), cfg, log)
	case MediumRedis:
		if rdb == nil {
			err = &MediumBootstrapError{Code: MediumBootstrapErrorMissingClient, Medium: medium, Cause: errors.New("redis client not configured")}
			break
		}
		m = docstore.NewRedisMedium(rdb, cfg.Redis.Key, log)
	default:
		err = &MediumBootstrapError{Code: MediumBootstrapErrorInvalidMedium, Medium: medium, Cause: fmt.Errorf("unsupported medium %q", medium)}
	}
	if err != nil {
		log.Error("Survey medium bootstrap failed", "medium", medium, "error_code", mediumBootstrapErrorCode(err), "error", err)
		return nil, err
	}
	log.Info("Survey medium ready", "medium", m.Describe())
	return m, nil
}

func gormMedium(gdb *gorm.DB, cfg Config, log *logger.Logger) (docstore.Medium, error) {
	m, err := docstore.NewGormMedium(gdb, cfg.Survey.DocumentName, log)
	if err != nil {
		return nil, &MediumBootstrapError{Code: MediumBootstrapErrorMigrateFailed, Medium: cfg.Survey.Medium, Cause: err}
	}
	return m, nil
}

func mediumBootstrapErrorCode(err error) MediumBootstrapErrorCode {
	var bootstrapErr *MediumBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return MediumBootstrapErrorConnectFailed
}
