package record

import "github.com/tom1484/cmg-10m-thermal/internal/errors"

const (
	ErrInvalidDBPath = errors.ErrorCode("record_invalid_db_path")

	ErrSchemaInitFailed       = errors.ErrorCode("record_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("record_schema_validation_failed")
	ErrSchemaTooNew           = errors.ErrorCode("record_schema_too_new")
	ErrTransactionFailed      = errors.ErrorCode("record_transaction_failed")

	ErrStorageInit  = errors.ErrInitFailed
	ErrStorageClose = errors.ErrShutdownFailed
)
